//go:build windows

package core

import (
	"context"
	"errors"
)

var ErrOnnxNotSupportedOnWindows = errors.New("ONNX classifiers are not supported on Windows")

type OnnxClassifier struct{}

func LoadOnnxClassifier(modelDir string) (Classifier, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (m *OnnxClassifier) Predict(ctx context.Context, texts []string) ([]int, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (m *OnnxClassifier) Release() {
	// no-op
}
