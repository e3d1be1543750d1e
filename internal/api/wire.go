package api

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/siliconsage/build-engine/internal/models"
)

// FromStruct maps a gRPC request payload into the raw build description the normalizer accepts.
func FromStruct(req *structpb.Struct) (map[string]any, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	return req.AsMap(), nil
}

// ToStruct converts an analysis result into the gRPC payload, using the HTTP JSON field names.
func ToStruct(result models.AnalysisResult) (*structpb.Struct, error) {
	payload, err := structpb.NewStruct(map[string]any{
		"predicted_fps":             result.PredictedFPS,
		"bottleneck_component":      string(result.BottleneckComponent),
		"bottleneck_severity":       string(result.BottleneckSeverity),
		"bottleneck_recommendation": result.BottleneckRecommendation,
		"integrity_score":           result.IntegrityScore,
		"integrity_status":          result.IntegrityStatus,
		"integrity_warnings":        toList(result.IntegrityWarnings),
		"integrity_notes":           toList(result.IntegrityNotes),
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis result: %w", err)
	}
	return payload, nil
}

// FromResultStruct reads an analysis result back out of a gRPC payload.
func FromResultStruct(payload *structpb.Struct) (models.AnalysisResult, error) {
	if payload == nil {
		return models.AnalysisResult{}, errors.New("payload is nil")
	}
	fields := payload.GetFields()
	return models.AnalysisResult{
		PredictedFPS:             fields["predicted_fps"].GetNumberValue(),
		BottleneckComponent:      models.Component(fields["bottleneck_component"].GetStringValue()),
		BottleneckSeverity:       models.Severity(fields["bottleneck_severity"].GetStringValue()),
		BottleneckRecommendation: fields["bottleneck_recommendation"].GetStringValue(),
		IntegrityScore:           int(fields["integrity_score"].GetNumberValue()),
		IntegrityStatus:          fields["integrity_status"].GetStringValue(),
		IntegrityWarnings:        fromList(fields["integrity_warnings"]),
		IntegrityNotes:           fromList(fields["integrity_notes"]),
	}, nil
}

// ValueTierToStruct converts a value tier result into the gRPC payload.
func ValueTierToStruct(result models.ValueTierResult) (*structpb.Struct, error) {
	payload, err := structpb.NewStruct(map[string]any{
		"tier":          string(result.Tier),
		"value_score":   result.ValueScore,
		"similar_parts": toList(result.SimilarParts),
	})
	if err != nil {
		return nil, fmt.Errorf("encode value tier result: %w", err)
	}
	return payload, nil
}

// FromValueTierStruct reads a value tier result back out of a gRPC payload.
func FromValueTierStruct(payload *structpb.Struct) (models.ValueTierResult, error) {
	if payload == nil {
		return models.ValueTierResult{}, errors.New("payload is nil")
	}
	fields := payload.GetFields()
	return models.ValueTierResult{
		Tier:         models.ValueTier(fields["tier"].GetStringValue()),
		ValueScore:   fields["value_score"].GetNumberValue(),
		SimilarParts: fromList(fields["similar_parts"]),
	}, nil
}

func toList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func fromList(value *structpb.Value) []string {
	items := value.GetListValue().GetValues()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.GetStringValue())
	}
	return out
}
