// SPDX-License-Identifier: MIT

// Package matrix provides dense float32 linear-algebra kernels shared by the
// hypergraph layers, the predictive models, and the synthetic data
// generator: element-wise ops, LU-based solve/inverse, and a Cholesky
// factorization used to inject cross-sensor correlation.
//
// Values are float32 throughout, not float64: every numeric contract in
// this core is specified in 32-bit precision (sparse incidence values,
// feature matrices, ring-buffer history), and Dense is the dense
// counterpart callers reach for when a sparse view is not enough (ridge
// regression's normal equations, Cholesky factors).
package matrix
