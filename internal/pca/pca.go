// Package pca implements principal component analysis for
// dimensionality reduction.
//
// A Reducer is fitted once on training data, which computes the
// feature-wise mean and the top-d eigenvectors of the sample
// covariance matrix; afterwards Transform projects any dataset with
// the same feature count onto those components. Refitting overwrites
// the stored parameters.
package pca

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Reducer reduces D-dimensional data to d principal components.
//
// The zero state is unfitted: Transform fails until Fit has run.
type Reducer struct {
	d    int
	mean []float64  // feature-wise mean of the training data, length D
	w    *mat.Dense // D×d matrix of principal components

	eigenvalues []float64 // kept eigenvalues, descending
}

// New creates a Reducer targeting d output dimensions.
func New(d int) *Reducer {
	return &Reducer{d: d}
}

// Fit computes the principal components of the training data and
// returns the explained variance of the kept dimensions as a
// percentage in [0, 100].
//
// training data has shape (N, D). The covariance matrix uses the
// sample convention (divide by N-1). Eigenvalues come out of the
// symmetric eigendecomposition in ascending order and are reordered
// to descending before the top d are kept.
func (r *Reducer) Fit(data mat.Matrix) (float64, error) {
	n, dim := data.Dims()
	if n < 2 {
		return 0, fmt.Errorf("pca: need at least 2 samples to fit, got %d", n)
	}
	if r.d <= 0 || r.d > dim {
		return 0, fmt.Errorf("pca: target dimension %d out of range [1, %d]", r.d, dim)
	}

	mean := make([]float64, dim)
	col := make([]float64, n)
	for j := 0; j < dim; j++ {
		mat.Col(col, j, data)
		mean[j] = floats.Sum(col) / float64(n)
	}

	cov := mat.NewSymDense(dim, nil)
	stat.CovarianceMatrix(cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return 0, fmt.Errorf("pca: eigendecomposition of %dx%d covariance failed", dim, dim)
	}
	vals := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Keep the top d eigenvectors, reordered to descending eigenvalue.
	w := mat.NewDense(dim, r.d, nil)
	kept := make([]float64, r.d)
	for j := 0; j < r.d; j++ {
		src := dim - 1 - j
		kept[j] = vals[src]
		for i := 0; i < dim; i++ {
			w.Set(i, j, vecs.At(i, src))
		}
	}

	r.mean = mean
	r.w = w
	r.eigenvalues = kept

	total := floats.Sum(vals)
	if total == 0 {
		return 0, nil
	}
	exvar := 100 * floats.Sum(kept) / total
	// Rank-deficient data can produce tiny negative eigenvalues that
	// push the ratio marginally outside the bounds.
	return min(max(exvar, 0), 100), nil
}

// Transform projects data of shape (N, D) onto the fitted components,
// returning (data - mean) · W of shape (N, d).
//
// Fails if called before Fit or if the feature count differs from the
// training data.
func (r *Reducer) Transform(data mat.Matrix) (*mat.Dense, error) {
	if !r.Fitted() {
		return nil, fmt.Errorf("pca: Transform called before Fit")
	}
	n, dim := data.Dims()
	if dim != len(r.mean) {
		return nil, fmt.Errorf("pca: data has %d features, reducer was fitted on %d", dim, len(r.mean))
	}

	centered := mat.NewDense(n, dim, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			centered.Set(i, j, data.At(i, j)-r.mean[j])
		}
	}

	reduced := mat.NewDense(n, r.d, nil)
	reduced.Mul(centered, r.w)
	return reduced, nil
}

// Fitted reports whether Fit has completed at least once.
func (r *Reducer) Fitted() bool {
	return r.w != nil
}

// Dim returns the target dimensionality d.
func (r *Reducer) Dim() int {
	return r.d
}

// Components returns the fitted D×d projection matrix, or nil while
// unfitted.
func (r *Reducer) Components() *mat.Dense {
	return r.w
}

// Eigenvalues returns the kept eigenvalues in descending order, or nil
// while unfitted.
func (r *Reducer) Eigenvalues() []float64 {
	return r.eigenvalues
}
