package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Architecture is one point of the search space: the first hidden layer width
// followed by the widths of the extra hidden layers.
type Architecture struct {
	Units  int   `json:"units"`
	Hidden []int `json:"hidden"`
}

func (a Architecture) String() string {
	return fmt.Sprintf("units=%d hidden=%v", a.Units, a.Hidden)
}

// widths returns every layer width after the input, ending with the single
// linear output unit.
func (a Architecture) widths() []int {
	out := append([]int{a.Units}, a.Hidden...)
	return append(out, 1)
}

type dense struct {
	w    *mat.Dense // in x out
	b    []float64
	relu bool

	// Set by forward in training mode and consumed by backward.
	in *mat.Dense
	z  *mat.Dense

	gw *mat.Dense
	gb []float64
}

// newDense builds a layer with Glorot-uniform weights and zero biases.
func newDense(in, out int, relu bool, rng *rand.Rand) *dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return &dense{
		w:    mat.NewDense(in, out, data),
		b:    make([]float64, out),
		relu: relu,
		gw:   mat.NewDense(in, out, nil),
		gb:   make([]float64, out),
	}
}

func (l *dense) forward(x *mat.Dense, train bool) *mat.Dense {
	r, _ := x.Dims()
	_, out := l.w.Dims()
	z := mat.NewDense(r, out, nil)
	z.Mul(x, l.w)
	z.Apply(func(_, j int, v float64) float64 { return v + l.b[j] }, z)
	if train {
		l.in, l.z = x, z
	}
	if !l.relu {
		return z
	}
	a := mat.NewDense(r, out, nil)
	a.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, z)
	return a
}

// backward takes dL/d(output) and returns dL/d(input), filling gw and gb.
func (l *dense) backward(grad *mat.Dense) *mat.Dense {
	dz := grad
	if l.relu {
		r, c := grad.Dims()
		dz = mat.NewDense(r, c, nil)
		dz.Apply(func(i, j int, v float64) float64 {
			if l.z.At(i, j) > 0 {
				return v
			}
			return 0
		}, grad)
	}
	l.gw.Mul(l.in.T(), dz)
	r, c := dz.Dims()
	for j := 0; j < c; j++ {
		s := 0.0
		for i := 0; i < r; i++ {
			s += dz.At(i, j)
		}
		l.gb[j] = s
	}
	in, _ := l.w.Dims()
	dx := mat.NewDense(r, in, nil)
	dx.Mul(dz, l.w.T())
	return dx
}

// Network is a ReLU multilayer perceptron with one linear output. It
// implements Predictor.
type Network struct {
	arch   Architecture
	inputs int
	layers []*dense
}

// NewNetwork initializes a network for inputs-wide feature vectors.
func NewNetwork(arch Architecture, inputs int, rng *rand.Rand) *Network {
	n := &Network{arch: arch, inputs: inputs}
	in := inputs
	widths := arch.widths()
	for i, w := range widths {
		n.layers = append(n.layers, newDense(in, w, i < len(widths)-1, rng))
		in = w
	}
	return n
}

// Architecture returns the layer layout of n.
func (n *Network) Architecture() Architecture { return n.arch }

func (n *Network) forward(x *mat.Dense, train bool) *mat.Dense {
	for _, l := range n.layers {
		x = l.forward(x, train)
	}
	return x
}

// step runs one forward/backward pass on a batch and returns the batch MSE.
// Gradients are left in the layers for the optimizer.
func (n *Network) step(x *mat.Dense, y []float64) float64 {
	out := n.forward(x, true)
	b := len(y)
	grad := mat.NewDense(b, 1, nil)
	loss := 0.0
	for i := 0; i < b; i++ {
		d := out.At(i, 0) - y[i]
		loss += d * d
		grad.Set(i, 0, 2*d/float64(b))
	}
	g := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		g = n.layers[i].backward(g)
	}
	return loss / float64(b)
}

// predictChunk bounds the rows pushed through the network at once.
const predictChunk = 1024

// Predict returns one temperature per feature vector.
func (n *Network) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, 0, len(features))
	for start := 0; start < len(features); start += predictChunk {
		end := min(start+predictChunk, len(features))
		x, err := matrix(features, seq(start, end), n.inputs)
		if err != nil {
			return nil, err
		}
		y := n.forward(x, false)
		for i := 0; i < end-start; i++ {
			out = append(out, y.At(i, 0))
		}
	}
	return out, nil
}

// mse is the mean squared error of n over the given rows.
func (n *Network) mse(features [][]float64, targets []float64, rows []int) (float64, error) {
	if len(rows) == 0 {
		return 0, ErrTooFewSamples
	}
	sum := 0.0
	for start := 0; start < len(rows); start += predictChunk {
		end := min(start+predictChunk, len(rows))
		x, err := matrix(features, rows[start:end], n.inputs)
		if err != nil {
			return 0, err
		}
		y := n.forward(x, false)
		for i, r := range rows[start:end] {
			d := y.At(i, 0) - targets[r]
			sum += d * d
		}
	}
	return sum / float64(len(rows)), nil
}

// matrix copies the selected rows of features into a dense batch.
func matrix(features [][]float64, rows []int, width int) (*mat.Dense, error) {
	data := make([]float64, 0, len(rows)*width)
	for _, r := range rows {
		if len(features[r]) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, r, len(features[r]), width)
		}
		data = append(data, features[r]...)
	}
	return mat.NewDense(len(rows), width, data), nil
}

func seq(start, end int) []int {
	out := make([]int, end-start)
	for i := range out {
		out[i] = start + i
	}
	return out
}
