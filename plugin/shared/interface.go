package shared

import (
	"context"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
)

// Handshake is a common handshake that is shared by plugin and host.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "SENTIMENT_PLUGIN",
	MagicCookieValue: "classifier",
}

const ClassifierPluginName = "classifier_grpc"

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]plugin.Plugin{
	ClassifierPluginName: &ClassifierGRPCPlugin{},
}

// Classifier is the interface exposed by a classifier plugin. Predict returns
// one class index per input text.
type Classifier interface {
	Predict(ctx context.Context, texts []string) ([]int, error)
}

// ClassifierGRPCPlugin is the plugin.GRPCPlugin implementation for Classifier.
type ClassifierGRPCPlugin struct {
	plugin.Plugin

	// Impl is only set when serving the plugin.
	Impl Classifier
}

func (p *ClassifierGRPCPlugin) GRPCServer(broker *plugin.GRPCBroker, s *grpc.Server) error {
	RegisterClassifierServer(s, &GRPCServer{Impl: p.Impl})
	return nil
}

func (p *ClassifierGRPCPlugin) GRPCClient(ctx context.Context, broker *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return &GRPCClient{conn: c}, nil
}
