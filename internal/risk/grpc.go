package risk

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ztbench/internal/model"
)

// gRPC service and method names for the risk scorer. Messages are
// google.protobuf.Struct with the same fields as the JSON API.
const (
	ServiceName = "ztbench.risk.v1.RiskScorer"
	ScoreMethod = "/" + ServiceName + "/Score"
)

// GRPCScorer calls the risk scorer over gRPC.
type GRPCScorer struct {
	conn *grpc.ClientConn
}

// DialGRPC creates a scorer connected to addr.
func DialGRPC(addr string) (*GRPCScorer, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to risk scorer: %w", err)
	}
	return &GRPCScorer{conn: conn}, nil
}

// Score implements Scorer. A successful RPC reports StatusOK.
func (s *GRPCScorer) Score(ctx context.Context, features Features) (float64, int, error) {
	req, err := FeaturesToStruct(features)
	if err != nil {
		return 0, 0, err
	}

	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, ScoreMethod, req, resp); err != nil {
		return 0, 0, fmt.Errorf("risk rpc: %w", err)
	}

	v, ok := resp.GetFields()["risk_score"]
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing risk_score", ErrMalformedResponse)
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, 0, fmt.Errorf("%w: risk_score is not a number", ErrMalformedResponse)
	}
	return num.NumberValue, model.StatusOK, nil
}

// Close closes the connection.
func (s *GRPCScorer) Close() error {
	return s.conn.Close()
}

// FeaturesToStruct encodes a feature vector as {"features": [...]}.
func FeaturesToStruct(features Features) (*structpb.Struct, error) {
	list := make([]any, FeatureWidth)
	for i, v := range features {
		list[i] = v
	}
	st, err := structpb.NewStruct(map[string]any{"features": list})
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	return st, nil
}

// FeaturesFromStruct decodes {"features": [...]}.
func FeaturesFromStruct(st *structpb.Struct) (Features, error) {
	v, ok := st.GetFields()["features"]
	if !ok {
		return Features{}, fmt.Errorf("%w: missing features", ErrMalformedFeatures)
	}
	list := v.GetListValue()
	if list == nil {
		return Features{}, fmt.Errorf("%w: features is not a list", ErrMalformedFeatures)
	}

	values := make([]float64, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		num, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return Features{}, fmt.Errorf("%w: feature %d is not a number", ErrMalformedFeatures, i)
		}
		values = append(values, num.NumberValue)
	}
	return FeaturesFromSlice(values)
}
