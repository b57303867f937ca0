package python

import (
	"context"
	"fmt"
	"os/exec"
	"sentiment-backend/plugin/shared"

	"github.com/hashicorp/go-plugin"
)

// PythonClassifier runs an mlflow pyfunc model in a python subprocess and talks
// to it over gRPC. It is not safe for concurrent use.
type PythonClassifier struct {
	client *plugin.Client
	model  shared.Classifier
}

func LoadPythonClassifier(pythonExecutable, pluginScript, pluginModelName, modelDir string) (*PythonClassifier, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: shared.Handshake,
		Plugins:         shared.PluginMap,
		Cmd: exec.Command(
			pythonExecutable,
			pluginScript,
			"--model-name", pluginModelName,
			"--model-dir", modelDir,
		),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("error establishing RPC connection: %w", err)
	}

	raw, err := rpcClient.Dispense(shared.ClassifierPluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("error dispensing '%s': %w", shared.ClassifierPluginName, err)
	}

	model, ok := raw.(shared.Classifier)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("dispensed interface '%s' is not of expected type shared.Classifier (actual type: %T)", shared.ClassifierPluginName, raw)
	}

	return &PythonClassifier{
		client: client,
		model:  model,
	}, nil
}

func (m *PythonClassifier) Predict(ctx context.Context, texts []string) ([]int, error) {
	if m.model == nil {
		return nil, fmt.Errorf("python classifier has been released")
	}
	return m.model.Predict(ctx, texts)
}

func (m *PythonClassifier) Release() {
	if m.client == nil {
		return
	}

	m.client.Kill()
	m.client = nil
	m.model = nil
}
