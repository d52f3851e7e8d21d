package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sourcegraph/conc/pool"

	"github.com/mkarl/bloggen/internal/models"
	"github.com/mkarl/bloggen/internal/types"
	"github.com/mkarl/bloggen/pkg/generator"
	"github.com/mkarl/bloggen/pkg/registry"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is a progress notification emitted while a connector moves
// through the pipeline stages.
type Event struct {
	Connector string `json:"connector"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
}

// Result is the outcome for one catalog entry.
type Result struct {
	Connector models.ConnectorDescriptor
	Status    Status
	FilePath  string
	Upload    models.UploadResult
	Err       error
}

type Config struct {
	Registry types.SchemaClient
	Chat     types.ChatClient
	Local    types.LocalPublisher
	CMS      types.CMSPublisher
	Ledger   types.RunLedger // optional
	CTAs     generator.CTASet
	Workers  int
	DryRun   bool
	OnEvent  func(Event) // optional
}

// Pipeline drives the catalog: introspect, generate, assemble, publish.
// Failures are isolated per catalog entry; one connector failing never
// prevents attempting the rest.
type Pipeline struct {
	config Config
	gen    *generator.Generator
}

func NewWithConfig(config Config) (*Pipeline, error) {
	if config.Registry == nil {
		return nil, errors.New("schema client is required")
	}
	if config.Chat == nil {
		return nil, errors.New("chat client is required")
	}
	if config.Local == nil {
		return nil, errors.New("local publisher is required")
	}
	if config.CMS == nil && !config.DryRun {
		return nil, errors.New("CMS publisher is required unless dry-run")
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.CTAs == (generator.CTASet{}) {
		config.CTAs = generator.DefaultCTAs()
	}

	return &Pipeline{
		config: config,
		gen:    generator.New(config.Chat),
	}, nil
}

// Run processes every connector and returns one result per catalog entry,
// in catalog order. With Workers > 1, connectors are processed by a
// bounded pool; chapters within a connector always stay sequential
// because each prompt depends on the accumulated history.
func (p *Pipeline) Run(ctx context.Context, connectors []models.ConnectorDescriptor) []Result {
	var runID string
	if p.config.Ledger != nil {
		id, err := p.config.Ledger.BeginRun()
		if err != nil {
			log.Printf("[pipeline] ledger unavailable: %v", err)
		} else {
			runID = id
		}
	}

	results := make([]Result, len(connectors))

	if p.config.Workers <= 1 {
		for i, c := range connectors {
			results[i] = p.processOne(ctx, c)
		}
	} else {
		workers := pool.New().WithMaxGoroutines(p.config.Workers)
		for i, c := range connectors {
			i, c := i, c
			workers.Go(func() {
				results[i] = p.processOne(ctx, c)
			})
		}
		workers.Wait()
	}

	if p.config.Ledger != nil && runID != "" {
		for _, r := range results {
			errText := ""
			if r.Err != nil {
				errText = r.Err.Error()
			}
			rec := models.PostRecord{
				RunID:         runID,
				Connector:     r.Connector.CanonicalID,
				Status:        string(r.Status),
				FilePath:      r.FilePath,
				CMSStatusCode: r.Upload.StatusCode,
				Error:         errText,
			}
			if err := p.config.Ledger.RecordPost(rec); err != nil {
				log.Printf("[pipeline] recording %s outcome: %v", r.Connector.CanonicalID, err)
			}
		}
		if err := p.config.Ledger.FinishRun(runID); err != nil {
			log.Printf("[pipeline] closing run %s: %v", runID, err)
		}
	}

	return results
}

func (p *Pipeline) processOne(ctx context.Context, connector models.ConnectorDescriptor) Result {
	result := Result{Connector: connector}

	p.emit(connector, "introspect", "started", "")
	schema, err := p.config.Registry.GetConfigSchema(ctx, connector.CanonicalID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			result.Status = StatusSkipped
		} else {
			result.Status = StatusFailed
		}
		result.Err = err
		p.emit(connector, "introspect", string(result.Status), err.Error())
		return result
	}

	p.emit(connector, "snippet", "started", "")
	snippet, err := p.gen.SynthesizeSnippet(ctx, schema)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		p.emit(connector, "snippet", "failed", err.Error())
		return result
	}

	p.emit(connector, "chapters", "started", "")
	chapters, err := p.gen.GenerateChapters(ctx, connector, snippet)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		p.emit(connector, "chapters", "failed", err.Error())
		return result
	}

	body, err := generator.Assemble(chapters, p.config.CTAs)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		p.emit(connector, "assemble", "failed", err.Error())
		return result
	}

	post := models.BlogPost{Connector: connector, Body: body}

	p.emit(connector, "write", "started", "")
	path, err := p.config.Local.Write(post)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		p.emit(connector, "write", "failed", err.Error())
		return result
	}
	result.FilePath = path

	if !p.config.DryRun {
		p.emit(connector, "upload", "started", "")
		upload, err := p.config.CMS.Upload(ctx, post)
		if err != nil {
			// Transport failure: the local file is already written, so
			// the connector still counts, but the miss is logged.
			log.Printf("[pipeline] upload for %s failed: %v", connector.CanonicalID, err)
			p.emit(connector, "upload", "failed", err.Error())
		} else {
			result.Upload = upload
			if upload.Success {
				p.emit(connector, "upload", "ok", fmt.Sprintf("status %d", upload.StatusCode))
			} else {
				log.Printf("[pipeline] upload for %s rejected: status %d, response: %s",
					connector.CanonicalID, upload.StatusCode, upload.Body)
				p.emit(connector, "upload", "failed", fmt.Sprintf("status %d", upload.StatusCode))
			}
		}
	}

	result.Status = StatusOK
	p.emit(connector, "done", "ok", "")
	return result
}

func (p *Pipeline) emit(connector models.ConnectorDescriptor, stage, status, detail string) {
	if p.config.OnEvent == nil {
		return
	}
	p.config.OnEvent(Event{
		Connector: connector.CanonicalID,
		Stage:     stage,
		Status:    status,
		Detail:    detail,
	})
}
