package model

import "math"

// AdamConfig holds the optimizer hyperparameters.
type AdamConfig struct {
	LearningRate float64 `mapstructure:"learning_rate" json:"learning_rate" yaml:"learning_rate"`
	Beta1        float64 `mapstructure:"beta1" json:"beta1" yaml:"beta1"`
	Beta2        float64 `mapstructure:"beta2" json:"beta2" yaml:"beta2"`
	Epsilon      float64 `mapstructure:"epsilon" json:"epsilon" yaml:"epsilon"`
}

// DefaultAdam returns lr 0.001, β1 0.9, β2 0.999, ε 1e-7.
func DefaultAdam() AdamConfig {
	return AdamConfig{LearningRate: 0.001, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-7}
}

type adamSlot struct {
	param, grad []float64
	m, v        []float64
}

// adam keeps first and second moment estimates for every parameter of one
// network. It is bound to that network for its whole life.
type adam struct {
	cfg   AdamConfig
	t     int
	slots []adamSlot
}

func newAdam(cfg AdamConfig, n *Network) *adam {
	o := &adam{cfg: cfg}
	for _, l := range n.layers {
		for _, pg := range [][2][]float64{
			{l.w.RawMatrix().Data, l.gw.RawMatrix().Data},
			{l.b, l.gb},
		} {
			o.slots = append(o.slots, adamSlot{
				param: pg[0],
				grad:  pg[1],
				m:     make([]float64, len(pg[0])),
				v:     make([]float64, len(pg[0])),
			})
		}
	}
	return o
}

// update applies one step using the gradients currently held by the network.
func (o *adam) update() {
	o.t++
	c := o.cfg
	lr := c.LearningRate * math.Sqrt(1-math.Pow(c.Beta2, float64(o.t))) / (1 - math.Pow(c.Beta1, float64(o.t)))
	for _, s := range o.slots {
		for i, g := range s.grad {
			s.m[i] = c.Beta1*s.m[i] + (1-c.Beta1)*g
			s.v[i] = c.Beta2*s.v[i] + (1-c.Beta2)*g*g
			s.param[i] -= lr * s.m[i] / (math.Sqrt(s.v[i]) + c.Epsilon)
		}
	}
}
