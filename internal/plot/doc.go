// Package plot renders relative travel-time residuals as time scatter plots.
//
// Each point is one target pick: x is the event origin time, y the residual
// relative to the reference station, colour the SNR and size the magnitude.
// Dashed vertical lines mark significant earthquakes. Images are written to
// <output>/<NET>/<NET>_<NET.STA>_RelativeTTresidual(sec)<label>.png.
package plot
