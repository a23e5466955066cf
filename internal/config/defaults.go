package config

const (
	defaultOutputDir         = "."
	defaultLogDir            = "~/.local/share/clockdrift/logs"
	defaultStorePath         = "~/.local/share/clockdrift/results.db"
	defaultMinRefSNR         = 10
	defaultCWTCutoff         = 15
	defaultSlopeCutoff       = 3
	defaultNSigmaCutoff      = 4
	defaultMinQualityPicks   = 100
	defaultMinDistanceDeg    = 30.0
	defaultMaxDistanceDeg    = 90.0
	defaultReferenceNetwork  = "AU"
	defaultPlotMode          = PlotModeFile
	defaultTTScale           = 50
	defaultSNRMin            = 0
	defaultSNRMax            = 60
	defaultPlotMinMagnitude  = 4.0
	defaultSizeScale         = 50
	defaultMinPointSize      = 10
	defaultWidthIn           = 32
	defaultHeightIn          = 9
	defaultEventMinMagnitude = 8.0
	defaultEventMinPicks     = 400
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	dateLayout = "2006-01-02"
)

// Plot modes.
const (
	PlotModeFile    = "file"
	PlotModeDisplay = "display"
)

// DefaultChannelPreference is the trusted channel priority order.
func DefaultChannelPreference() []string {
	return []string{"BHZ_00", "BHZ", "BHZ_10", "B?Z", "S?Z", "SHZ"}
}

// DefaultEventNames labels the well-known large earthquakes by UTC date.
func DefaultEventNames() map[string]string {
	return map[string]string{
		"2001-06-23": "2001 South Peru Earthquake",
		"2001-11-14": "2001 Kunlun earthquake",
		"2002-11-03": "2002 Denali earthquake",
		"2003-09-25": "2003 Tokachi-Oki earthquake",
		"2004-12-26": "2004 Indian Ocean earthquake and tsunami",
		"2005-03-28": "2005 Nias–Simeulue earthquake",
		"2009-09-29": "2009 Samoa earthquake and tsunami",
		"2010-02-27": "2010 Chile earthquake",
		"2011-03-11": "2011 Tohoku earthquake and tsunami",
		"2012-04-11": "2012 Indian Ocean earthquakes",
		"2013-02-06": "2013 Solomon Islands earthquakes",
		"2013-09-24": "2013 Balochistan earthquakes",
		"2014-04-01": "2014 Iquique earthquake",
		"2015-09-16": "2015 Illapel earthquake",
		"2016-08-24": "2016 Myanmar earthquake",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StorePath: defaultStorePath,
		},
		Filter: Filter{
			ChannelPreference: DefaultChannelPreference(),
			MinRefSNR:         defaultMinRefSNR,
			CWTCutoff:         defaultCWTCutoff,
			SlopeCutoff:       defaultSlopeCutoff,
			NSigmaCutoff:      defaultNSigmaCutoff,
			MinQualityPicks:   defaultMinQualityPicks,
			MinDistanceDeg:    defaultMinDistanceDeg,
			MaxDistanceDeg:    defaultMaxDistanceDeg,
			NetworkMinDates: map[string]string{
				"7D": "2010-01-01",
				"7G": "2010-01-01",
			},
		},
		Analysis: Analysis{
			ReferenceNetwork: defaultReferenceNetwork,
		},
		Plot: Plot{
			Mode:         defaultPlotMode,
			TTScale:      defaultTTScale,
			SNRMin:       defaultSNRMin,
			SNRMax:       defaultSNRMax,
			MinMagnitude: defaultPlotMinMagnitude,
			SizeScale:    defaultSizeScale,
			MinPointSize: defaultMinPointSize,
			WidthIn:      defaultWidthIn,
			HeightIn:     defaultHeightIn,
		},
		Events: Events{
			Enabled:      true,
			MinMagnitude: defaultEventMinMagnitude,
			MinPickCount: defaultEventMinPicks,
			Names:        DefaultEventNames(),
		},
		Store: Store{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
