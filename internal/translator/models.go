package translator

import (
	"llmjobs/internal/capability"
	"llmjobs/internal/models"
)

// DecorateModels attaches capability metadata to each upstream model,
// keeping upstream order. A nil table falls back to capability.Default.
func DecorateModels(upstream []models.UpstreamModel, table capability.Table) []models.ModelDescriptor {
	if table == nil {
		table = capability.Default
	}

	out := make([]models.ModelDescriptor, 0, len(upstream))
	for _, m := range upstream {
		out = append(out, models.ModelDescriptor{
			UpstreamModel: m,
			Capabilities:  table.Resolve(m.ID),
		})
	}
	return out
}
