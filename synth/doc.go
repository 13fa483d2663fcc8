// Package synth generates a complete multi-layer synthetic farm dataset for
// demos and tests: correlated weather/soil/npk/lighting/vision/irrigation
// time series over a seeded, bitwise-deterministic random stream, with
// NaN-plus-bitmask missingness and cross-channel correlation injected via
// a Cholesky factor of a seeded correlation matrix (package matrix).
package synth
