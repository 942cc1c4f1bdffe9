package engine

import "math"

// greedyDecode performs CTC greedy decoding over logits shaped [T, C]
// (class 0 is the blank). It returns the decoded character indices and the
// softmax probability of each emitted character.
func greedyDecode(logits []float32, steps, classes int) ([]int, []float64) {
	if steps <= 0 || classes <= 0 || len(logits) < steps*classes {
		return nil, nil
	}
	indices := make([]int, 0, steps)
	probs := make([]float64, 0, steps)
	prev := -1
	for t := 0; t < steps; t++ {
		row := logits[t*classes : (t+1)*classes]
		idx, _ := argmax(row)
		p := softmaxProb(row, idx)
		if idx == 0 { // blank
			prev = idx
			continue
		}
		if idx == prev { // collapse repeats
			continue
		}
		indices = append(indices, idx)
		probs = append(probs, p)
		prev = idx
	}
	return indices, probs
}

func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx, best := 0, v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > best {
			idx, best = i, v[i]
		}
	}
	return idx, best
}

// softmaxProb returns the softmax probability of v[idx]. Outputs that
// already look like probabilities are passed through unchanged.
func softmaxProb(v []float32, idx int) float64 {
	if idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - maxV))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-maxV)) / denom
}

// meanProb averages per-character probabilities; empty input yields 0.
func meanProb(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	var s float64
	for _, p := range probs {
		s += p
	}
	return s / float64(len(probs))
}
