// Package pca provides the public principal component analysis API of
// the sift library.
//
// A Reducer is fitted once on an (N, D) gonum matrix and afterwards
// projects data with the same feature count onto the top-d principal
// components:
//
//	reducer := pca.New(2)
//	exvar, err := reducer.Fit(trainData)
//	reduced, err := reducer.Transform(testData)
package pca

import (
	"github.com/sift-ml/sift/internal/pca"
)

// Reducer reduces D-dimensional data to d principal components.
type Reducer = pca.Reducer

// New creates a Reducer targeting d output dimensions.
func New(d int) *Reducer {
	return pca.New(d)
}
