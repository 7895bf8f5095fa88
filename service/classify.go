// Package service contains application logic shared between endpoints
package service

import (
	"math/rand"

	"voiceguard/audio-api/model"
)

// Classification is the outcome attached to an uploaded audio file.
type Classification struct {
	Confidence int
	Result     string
}

// Classify assigns a simulated deepfake verdict to an upload. No actual
// inference happens here: the confidence lands in [80, 99] and roughly
// 30% of uploads are labeled as deepfakes.
func Classify() Classification {
	c := Classification{
		Confidence: rand.Intn(20) + 80,
		Result:     model.ResultAuthentic,
	}

	if rand.Float64() > 0.7 {
		c.Result = model.ResultDeepfake
	}

	return c
}
