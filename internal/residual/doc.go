// Package residual broadcasts each event's reference station residual to all
// of the event's picks and derives relative travel-time residuals.
package residual
