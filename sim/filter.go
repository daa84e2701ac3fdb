package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Filter is a static Kalman filter over the stacked corner position vector
// (x0, y0, ..., x3, y3). The object does not move, so there is no process
// model: updates only fold measurements into the mean and shrink the
// covariance.
type Filter struct {
	mean  *mat.VecDense
	cov   *mat.SymDense
	noise float64 // measurement noise variance per coordinate
}

// NewFilter builds a filter with the given prior mean, a diagonal prior
// covariance and a measurement noise variance.
func NewFilter(initialMean []float64, initialVariance, noise float64) *Filter {
	n := len(initialMean)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, initialVariance)
	}
	return &Filter{
		mean:  mat.NewVecDense(n, append([]float64(nil), initialMean...)),
		cov:   cov,
		noise: noise,
	}
}

// Mean returns a copy of the live estimate.
func (f *Filter) Mean() *mat.VecDense {
	mean := mat.NewVecDense(f.mean.Len(), nil)
	mean.CopyVec(f.mean)
	return mean
}

// Cov returns a copy of the live covariance.
func (f *Filter) Cov() *mat.SymDense {
	cov := mat.NewSymDense(f.cov.SymmetricDim(), nil)
	cov.CopySym(f.cov)
	return cov
}

// Update folds a real measurement of the indexed corners into the live
// estimate.
func (f *Filter) Update(measured [][2]float64, indices []int) error {
	mean, cov, err := f.Simulate(f.mean, f.cov, measured, indices)
	if err != nil {
		return err
	}
	f.mean = mean
	f.cov = cov
	return nil
}

// Simulate performs one measurement update on the given mean and covariance
// without touching the live estimate, for use by the planner's forward
// model. measured holds positions for all corners; only the indexed ones are
// observed.
func (f *Filter) Simulate(mean *mat.VecDense, cov *mat.SymDense, measured [][2]float64, indices []int) (*mat.VecDense, *mat.SymDense, error) {
	n := mean.Len()
	if len(indices) == 0 {
		// Nothing observable: estimate is unchanged
		out := mat.NewVecDense(n, nil)
		out.CopyVec(mean)
		outCov := mat.NewSymDense(n, nil)
		outCov.CopySym(cov)
		return out, outCov, nil
	}

	// Measurement matrix selecting the observed coordinates
	m := 2 * len(indices)
	h := mat.NewDense(m, n, nil)
	z := mat.NewVecDense(m, nil)
	for row, idx := range indices {
		h.Set(2*row, 2*idx, 1)
		h.Set(2*row+1, 2*idx+1, 1)
		z.SetVec(2*row, measured[idx][0])
		z.SetVec(2*row+1, measured[idx][1])
	}

	// S = H P H^T + R
	var pht, s mat.Dense
	pht.Mul(cov, h.T())
	s.Mul(h, &pht)
	for i := 0; i < m; i++ {
		s.Set(i, i, s.At(i, i)+f.noise)
	}

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return nil, nil, fmt.Errorf("innovation covariance is singular: %w", err)
	}

	// K = P H^T S^-1
	var gain mat.Dense
	gain.Mul(&pht, &sInv)

	// mean' = mean + K (z - H mean)
	var innovation, correction mat.VecDense
	innovation.MulVec(h, mean)
	innovation.SubVec(z, &innovation)
	correction.MulVec(&gain, &innovation)
	newMean := mat.NewVecDense(n, nil)
	newMean.AddVec(mean, &correction)

	// P' = (I - K H) P
	var kh mat.Dense
	kh.Mul(&gain, h)
	ikh := identity(n)
	ikh.Sub(ikh, &kh)
	var newCovDense mat.Dense
	newCovDense.Mul(ikh, cov)

	// Symmetrize to absorb floating point drift
	newCov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			newCov.SetSym(i, j, (newCovDense.At(i, j)+newCovDense.At(j, i))/2)
		}
	}

	return newMean, newCov, nil
}

func identity(n int) *mat.Dense {
	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}
	return eye
}
