package routes

import (
	"github.com/hydra-warm/hydra-warm/internal/cache"
	"github.com/hydra-warm/hydra-warm/internal/manager"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

type resultPayload struct {
	Name       string `json:"name"`
	Optional   bool   `json:"optional"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type reportPayload struct {
	HydratorDir string                 `json:"hydrator_dir"`
	DirCreated  bool                   `json:"dir_created"`
	Skipped     bool                   `json:"skipped"`
	StartedAt   string                 `json:"started_at"`
	DurationMS  int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Managers    []managerReportPayload `json:"managers"`
}

type managerReportPayload struct {
	Name       string `json:"name"`
	Classes    int    `json:"classes"`
	DurationMS int64  `json:"duration_ms"`
}

type managerPayload struct {
	Name       string            `json:"name"`
	MappingDir string            `json:"mapping_dir"`
	Package    string            `json:"package"`
	WarmedUp   bool              `json:"warmed_up"`
	Artifacts  []artifactPayload `json:"artifacts,omitempty"`
}

type artifactPayload struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	ModTime   string `json:"mod_time"`
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func encodeResults(results []warmer.Result) []resultPayload {
	if len(results) == 0 {
		return nil
	}
	out := make([]resultPayload, 0, len(results))
	for _, r := range results {
		item := resultPayload{
			Name:       r.Name,
			Optional:   r.Optional,
			Status:     r.Status(),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	return out
}

func encodeReport(report warmer.Report) reportPayload {
	managers := make([]managerReportPayload, 0, len(report.Managers))
	for _, m := range report.Managers {
		managers = append(managers, managerReportPayload{
			Name:       m.Name,
			Classes:    m.Classes,
			DurationMS: m.Duration.Milliseconds(),
		})
	}
	return reportPayload{
		HydratorDir: report.HydratorDir,
		DirCreated:  report.DirCreated,
		Skipped:     report.Skipped,
		StartedAt:   report.StartedAt.UTC().Format(timeLayout),
		DurationMS:  report.Duration.Milliseconds(),
		Error:       report.Error,
		Managers:    managers,
	}
}

func (d Diagnostics) encodeManager(m *manager.Manager) managerPayload {
	warmed := false
	if !d.AutoGenerate {
		for _, name := range d.Listed {
			if name == m.Name() {
				warmed = true
				break
			}
		}
	}
	payload := managerPayload{
		Name:       m.Name(),
		MappingDir: m.MappingDir(),
		WarmedUp:   warmed,
	}
	if h := m.Hydrators(); h != nil {
		payload.Package = h.Package()
	}
	return payload
}

func encodeArtifacts(entries []cache.Entry) []artifactPayload {
	if len(entries) == 0 {
		return nil
	}
	out := make([]artifactPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, artifactPayload{
			Name:      e.Locator.Name,
			SizeBytes: e.SizeBytes,
			ModTime:   e.ModTime.UTC().Format(timeLayout),
		})
	}
	return out
}
