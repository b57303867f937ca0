//go:build !windows

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	onnxModelFile      = "model.onnx"
	tokenizerFile      = "tokenizer.json"
	classifierConfFile = "classifier.json"
)

type OnnxClassifierConfig struct {
	InputIdsName      string `json:"input_ids_name"`
	AttentionMaskName string `json:"attention_mask_name"`
	OutputName        string `json:"output_name"`
	NumClasses        int    `json:"num_classes"`
	MaxSequenceLength int    `json:"max_sequence_length"`
}

func defaultOnnxClassifierConfig() OnnxClassifierConfig {
	return OnnxClassifierConfig{
		InputIdsName:      "input_ids",
		AttentionMaskName: "attention_mask",
		OutputName:        "logits",
		NumClasses:        2,
		MaxSequenceLength: 512,
	}
}

// loadClassifierConfig reads the optional classifier.json next to the model,
// fields missing from the file keep their defaults.
func loadClassifierConfig(path string) (OnnxClassifierConfig, error) {
	cfg := defaultOnnxClassifierConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	if cfg.InputIdsName == "" || cfg.OutputName == "" {
		return cfg, fmt.Errorf("input_ids_name and output_name must not be empty")
	}
	if cfg.NumClasses < 2 {
		return cfg, fmt.Errorf("num_classes must be at least 2, got %d", cfg.NumClasses)
	}
	if cfg.MaxSequenceLength <= 0 {
		return cfg, fmt.Errorf("max_sequence_length must be positive, got %d", cfg.MaxSequenceLength)
	}

	return cfg, nil
}

func argmax(row []float32) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

func truncateSequence(ids, mask []uint32, maxLen int) ([]int64, []int64) {
	n := min(len(ids), maxLen)
	ids64 := make([]int64, n)
	mask64 := make([]int64, n)
	for i := 0; i < n; i++ {
		ids64[i] = int64(ids[i])
		if i < len(mask) {
			mask64[i] = int64(mask[i])
		} else {
			mask64[i] = 1
		}
	}
	return ids64, mask64
}

type OnnxClassifier struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *tokenizers.Tokenizer
	config    OnnxClassifierConfig
}

// LoadOnnxClassifier expects the onnx runtime environment to be initialized.
func LoadOnnxClassifier(modelDir string) (Classifier, error) {
	cfg, err := loadClassifierConfig(filepath.Join(modelDir, classifierConfFile))
	if err != nil {
		return nil, fmt.Errorf("classifier config load error: %w", err)
	}

	tk, err := tokenizers.FromFile(filepath.Join(modelDir, tokenizerFile))
	if err != nil {
		return nil, fmt.Errorf("tokenizer load: %w", err)
	}

	inputs := []string{cfg.InputIdsName}
	if cfg.AttentionMaskName != "" {
		inputs = append(inputs, cfg.AttentionMaskName)
	}

	session, err := ort.NewDynamicAdvancedSession(
		filepath.Join(modelDir, onnxModelFile),
		inputs,
		[]string{cfg.OutputName},
		nil,
	)
	if err != nil {
		tk.Close()
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	return &OnnxClassifier{
		session:   session,
		tokenizer: tk,
		config:    cfg,
	}, nil
}

func (m *OnnxClassifier) Predict(ctx context.Context, texts []string) ([]int, error) {
	classes := make([]int, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		class, err := m.predictOne(text)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (m *OnnxClassifier) predictOne(text string) (int, error) {
	enc := m.tokenizer.EncodeWithOptions(text, true, tokenizers.WithReturnAttentionMask())
	ids, mask := truncateSequence(enc.IDs, enc.AttentionMask, m.config.MaxSequenceLength)
	if len(ids) == 0 {
		return 0, fmt.Errorf("tokenizer produced no tokens")
	}

	L, C := int64(len(ids)), int64(m.config.NumClasses)

	idsT, err := ort.NewTensor(ort.NewShape(1, L), ids)
	if err != nil {
		return 0, err
	}
	defer idsT.Destroy()

	inputs := []ort.Value{idsT}
	if m.config.AttentionMaskName != "" {
		maskT, err := ort.NewTensor(ort.NewShape(1, L), mask)
		if err != nil {
			return 0, err
		}
		defer maskT.Destroy()
		inputs = append(inputs, maskT)
	}

	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, C))
	if err != nil {
		return 0, err
	}
	defer outT.Destroy()

	if err := m.session.Run(inputs, []ort.Value{outT}); err != nil {
		return 0, fmt.Errorf("session run error: %w", err)
	}

	return argmax(outT.GetData()), nil
}

func (m *OnnxClassifier) Release() {
	m.session.Destroy()
	m.tokenizer.Close()
}
