package core

import (
	"context"
	"fmt"
	"os"
	"sentiment-backend/internal/core/python"
	"sync"
)

// ModelType represents the serialization format of the sentiment classifier
type ModelType string

// Available model types
const (
	OnnxClassifierType ModelType = "onnx"
	PythonMlflowType   ModelType = "python_mlflow"
)

const pluginModelName = "mlflow_pyfunc"

// Classifier returns one class index per input text.
type Classifier interface {
	Predict(ctx context.Context, texts []string) ([]int, error)

	Release()
}

type ClassifierLoader func(string) (Classifier, error)

func NewClassifierLoaders(pythonExec, pluginScript string) map[ModelType]ClassifierLoader {
	return map[ModelType]ClassifierLoader{
		OnnxClassifierType: func(modelDir string) (Classifier, error) {
			return LoadOnnxClassifier(modelDir)
		},
		PythonMlflowType: func(modelDir string) (Classifier, error) {
			model, err := python.LoadPythonClassifier(pythonExec, pluginScript, pluginModelName, modelDir)
			if err != nil {
				return nil, err
			}
			// the plugin client is not safe for concurrent use
			return NewSerializedClassifier(model), nil
		},
	}
}

// LoadClassifier checks that the model store is mounted before handing the
// directory to the loader registered for modelType.
func LoadClassifier(loaders map[ModelType]ClassifierLoader, modelType ModelType, modelDir string) (Classifier, error) {
	loader, ok := loaders[modelType]
	if !ok {
		return nil, fmt.Errorf("unsupported model type '%s'", modelType)
	}

	info, err := os.Stat(modelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("model path %s does not exist or the storage is not mounted", modelDir)
		}
		return nil, fmt.Errorf("failed to stat model path %s: %w", modelDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model path %s is not a directory", modelDir)
	}

	model, err := loader(modelDir)
	if err != nil {
		return nil, fmt.Errorf("error loading %s model from %s: %w", modelType, modelDir, err)
	}
	return model, nil
}

type SerializedClassifier struct {
	mu    sync.Mutex
	model Classifier
}

func NewSerializedClassifier(model Classifier) *SerializedClassifier {
	return &SerializedClassifier{model: model}
}

func (s *SerializedClassifier) Predict(ctx context.Context, texts []string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Predict(ctx, texts)
}

func (s *SerializedClassifier) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.Release()
}
