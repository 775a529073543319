// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package smooth holds moving average smoothers for prep.Dataset.Smooth.
package smooth

import (
	"math"

	"github.com/pilosa/prep"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// weightTolerance is how far the weights of a WeightedMovingAverage may sum
// away from one.
const weightTolerance = 1e-9

// SimpleMovingAverage averages every run of Window consecutive values.
type SimpleMovingAverage struct {
	Window int
}

// NewSimpleMovingAverage returns a SimpleMovingAverage over window values.
func NewSimpleMovingAverage(window int) (*SimpleMovingAverage, error) {
	if window < 1 {
		return nil, errors.Errorf("window %d is not positive", window)
	}
	return &SimpleMovingAverage{Window: window}, nil
}

// Smooth implements prep.Smoother. It returns len(values)-Window+1 averages,
// none if there are fewer values than Window.
func (s *SimpleMovingAverage) Smooth(values []float64) []float64 {
	return slide(values, s.Window, func(win []float64) float64 {
		return stat.Mean(win, nil)
	})
}

// WeightedMovingAverage is a moving average whose window has one weight per
// position, oldest value first. The weights sum to one.
type WeightedMovingAverage struct {
	weights []float64
}

// NewWeightedMovingAverage returns a WeightedMovingAverage with a window of
// len(weights) values.
func NewWeightedMovingAverage(weights ...float64) (*WeightedMovingAverage, error) {
	if len(weights) == 0 {
		return nil, errors.New("no weights")
	}
	if sum := floats.Sum(weights); math.Abs(sum-1) > weightTolerance {
		return nil, errors.Errorf("weights sum to %v instead of 1", sum)
	}
	return &WeightedMovingAverage{weights: append([]float64(nil), weights...)}, nil
}

// Window returns the number of values averaged at once.
func (w *WeightedMovingAverage) Window() int { return len(w.weights) }

// Smooth implements prep.Smoother.
func (w *WeightedMovingAverage) Smooth(values []float64) []float64 {
	return slide(values, len(w.weights), func(win []float64) float64 {
		return floats.Dot(win, w.weights)
	})
}

func slide(values []float64, window int, avg func(win []float64) float64) []float64 {
	if window < 1 {
		window = 1
	}
	if len(values) < window {
		return []float64{}
	}
	ret := make([]float64, 0, len(values)-window+1)
	for end := window; end <= len(values); end++ {
		ret = append(ret, avg(values[end-window:end]))
	}
	return ret
}

// Named returns a smoother by name: "simple" uses window, "weighted" uses
// weights and ignores window.
func Named(method string, window int, weights []float64) (prep.Smoother, error) {
	switch method {
	case "simple", "":
		return NewSimpleMovingAverage(window)
	case "weighted":
		return NewWeightedMovingAverage(weights...)
	default:
		return nil, errors.Errorf("unknown smoothing method '%s'", method)
	}
}
