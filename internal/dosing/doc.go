// Package dosing computes insulin infusion rate decisions from blood-glucose readings.
//
// Each protocol is a Policy built from ordered tables of (range -> effect)
// rows. Glucose columns and glucose-change rows partition the real line, so
// every valid reading matches exactly one row. Three policies are provided:
//
//	yale         five-column grid on the absolute BG change (the default)
//	simple       fixed-step policy with configurable target bounds
//	yale-hourly  grid on the hourly rate of change, with a rapid-fall section
//
// The thresholds of the policies are independent and must not be mixed.
// All rate arithmetic is done in decimal and clamped at zero.
package dosing
