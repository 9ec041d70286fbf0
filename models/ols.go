package models

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OLSOptions represents input options to run an ordinary least squares fit.
type OLSOptions struct {
	// FitIntercept prepends a constant 1.0 column when set. The blend fit
	// leaves this off so the combination stays a pure weighting of the
	// member models.
	FitIntercept bool
}

// NewDefaultOLSOptions returns a default set of OLS options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		return NewDefaultOLSOptions(), nil
	}
	return o, nil
}

// OLS computes an ordinary least squares fit using QR factorization.
type OLS struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

func NewOLS(opt *OLSOptions) (*OLS, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLS{opt: opt}, nil
}

func (o *OLS) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}

	m, n := x.Dims()
	if m == 0 {
		return ErrNoSamples
	}
	ym, yn := y.Dims()
	if ym != m || yn != 1 {
		return fmt.Errorf("training data has %d rows and target has %d, %w", m, ym, ErrTargetLenMismatch)
	}

	design := x
	if o.opt.FitIntercept {
		withOnes := mat.NewDense(m, n+1, nil)
		for i := 0; i < m; i++ {
			withOnes.Set(i, 0, 1.0)
			for j := 0; j < n; j++ {
				withOnes.Set(i, j+1, x.At(i, j))
			}
		}
		design = withOnes
	}

	var qr mat.QR
	qr.Factorize(design)

	yDense := mat.DenseCopyOf(y)
	var c mat.Dense
	if err := qr.SolveTo(&c, false, yDense); err != nil {
		// an ill-conditioned system still yields a usable least squares
		// solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("unable to solve least squares system, %w", err)
		}
	}

	_, cols := design.Dims()
	coef := make([]float64, cols)
	for i := range coef {
		coef[i] = c.At(i, 0)
	}

	if o.opt.FitIntercept {
		o.intercept = coef[0]
		o.coef = coef[1:]
		return nil
	}
	o.coef = coef
	return nil
}

func (o *OLS) Predict(x mat.Matrix) ([]float64, error) {
	if o.coef == nil {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("design matrix has %d features, model has %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		pred := o.intercept
		for j := 0; j < n; j++ {
			pred += o.coef[j] * x.At(i, j)
		}
		out[i] = pred
	}
	return out, nil
}

// Intercept returns the fitted constant term. Zero when FitIntercept is off.
func (o *OLS) Intercept() float64 {
	return o.intercept
}

// Coef returns the fitted coefficients in feature order.
func (o *OLS) Coef() []float64 {
	coef := make([]float64, len(o.coef))
	copy(coef, o.coef)
	return coef
}
