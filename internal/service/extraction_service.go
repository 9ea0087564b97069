package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acordex/internal/catalog"
	"acordex/internal/detector"
	"acordex/internal/domain"
	"acordex/internal/formatter"
	"acordex/internal/mapper"
	"acordex/internal/metrics"
	"acordex/internal/organizer"
	"acordex/internal/port"
)

const (
	genericDocumentType = "Document"
	artifactFileName    = "result.json"
)

// ExtractInput is the DTO for one extraction request.
type ExtractInput struct {
	Fields   domain.RawFieldMap
	PageText string
	// ForceACORD sends a fillable document down the ACORD path even when
	// detection did not recognize it.
	ForceACORD bool
}

// ExtractionOptions tunes the organizer stage.
type ExtractionOptions struct {
	OrganizerProvider string
	OrganizerTimeout  time.Duration
}

// ExtractionService defines the extraction pipeline contract.
type ExtractionService interface {
	Detect(fields domain.RawFieldMap) domain.DetectionResult
	Extract(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error)
}

type extractionService struct {
	mapper    *mapper.Mapper
	formatter *formatter.Formatter
	formCode  string
	organizer port.Organizer
	workspace port.Workspace
	artifacts port.ArtifactStore
	opts      ExtractionOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewExtractionService creates a new ExtractionService implementation.
// workspace and artifacts may be nil, in which case no artifact is written.
func NewExtractionService(
	cat *catalog.Catalog,
	org port.Organizer,
	workspace port.Workspace,
	artifacts port.ArtifactStore,
	opts ExtractionOptions,
	logger *zap.Logger,
) ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OrganizerTimeout <= 0 {
		opts.OrganizerTimeout = 60 * time.Second
	}
	return &extractionService{
		mapper:    mapper.New(cat),
		formatter: formatter.New(),
		formCode:  cat.FormCode(),
		organizer: org,
		workspace: workspace,
		artifacts: artifacts,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *extractionService) Detect(fields domain.RawFieldMap) domain.DetectionResult {
	return detector.Detect(fields)
}

func (s *extractionService) Extract(ctx context.Context, input *ExtractInput) (*domain.ExtractionResult, error) {
	start := s.now()
	res := &domain.ExtractionResult{
		RequestID: uuid.NewString(),
		Detection: detector.Detect(input.Fields),
		CreatedAt: start.UTC(),
	}
	log := s.logger.With(zap.String("request_id", res.RequestID))

	if res.Detection.Ambiguous() {
		log.Info("ambiguous ACORD detection, using generic extraction",
			zap.Int("matched_patterns", res.Detection.MatchedPatternCount))
	}

	var (
		direct domain.DirectMapResult
		in     port.OrganizeInput
	)
	acord := res.Detection.IsACORD || (input.ForceACORD && res.Detection.IsFillable)
	if acord {
		res.Method = domain.ExtractionMethodACORDHybrid
		direct = s.mapper.Map(input.Fields)
		in = port.OrganizeInput{Mode: domain.OrganizeModeResidual, Fields: direct.Residual}
	} else {
		res.Method = domain.ExtractionMethodGeneric
		in = port.OrganizeInput{Mode: domain.OrganizeModeDocument, Fields: input.Fields, PageText: input.PageText}
	}

	organized, err := s.organize(ctx, in, res)
	if err != nil {
		return nil, err
	}

	out, err := s.formatter.Merge(direct, organized)
	if err != nil {
		return nil, fmt.Errorf("merging extraction output: %w", err)
	}
	res.FormattedData = out

	s.classify(res, organized)

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("extraction output incomplete: %w", err)
	}

	if s.artifacts != nil {
		res.ArtifactKey = s.saveArtifact(ctx, res, log)
	}

	metrics.ExtractionsTotal.WithLabelValues(string(res.Method), string(res.OrganizerStatus)).Inc()
	metrics.ExtractionDuration.WithLabelValues(string(res.Method)).Observe(time.Since(start).Seconds())
	log.Info("extraction complete",
		zap.String("method", string(res.Method)),
		zap.String("organizer_status", string(res.OrganizerStatus)),
		zap.Int("mapped_fields", len(direct.Mapped)),
		zap.Int("residual_fields", direct.Residual.Len()),
		zap.Int("tokens", res.TokensUsed.Total),
	)
	return res, nil
}

// organize runs the single organizer attempt. Failures degrade the result;
// only caller cancellation is returned as an error.
func (s *extractionService) organize(ctx context.Context, in port.OrganizeInput, res *domain.ExtractionResult) (*domain.OrganizedResult, error) {
	if in.IsEmpty() {
		res.OrganizerStatus = domain.OrganizerStatusSkipped
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.OrganizerTimeout)
	defer cancel()

	organized, err := s.organizer.Organize(callCtx, in)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		unavailable := organizer.NewUnavailableError(s.opts.OrganizerProvider, err)
		s.logger.Warn("organizer unavailable, continuing without it",
			zap.String("request_id", res.RequestID),
			zap.String("mode", string(in.Mode)),
			zap.Error(unavailable),
		)
		metrics.OrganizerFailures.WithLabelValues(s.opts.OrganizerProvider).Inc()
		res.OrganizerStatus = domain.OrganizerStatusDegraded
		res.OrganizerError = unavailable.Error()
		return nil, nil
	}
	if organized == nil {
		res.OrganizerStatus = domain.OrganizerStatusSkipped
		return nil, nil
	}

	res.OrganizerStatus = domain.OrganizerStatusOK
	res.TokensUsed = organized.TokensUsed
	metrics.OrganizerTokens.WithLabelValues("prompt").Add(float64(organized.TokensUsed.Prompt))
	metrics.OrganizerTokens.WithLabelValues("completion").Add(float64(organized.TokensUsed.Completion))
	return organized, nil
}

// classify fills the document classification rule matching consumes and
// mirrors it into the information section.
func (s *extractionService) classify(res *domain.ExtractionResult, organized *domain.OrganizedResult) {
	var class domain.Classification
	if organized != nil && organized.Classification != nil {
		class = *organized.Classification
	}

	if res.Method == domain.ExtractionMethodACORDHybrid {
		res.DocumentType = domain.CertificateDocumentType
		res.CertificateType = s.formCode
		if code := res.Detection.FormCode; code != nil {
			res.CertificateType = *code
		}
		res.ProductName = class.ProductName
	} else {
		res.DocumentType = class.DocumentType
		if res.DocumentType == "" {
			res.DocumentType = genericDocumentType
		}
		res.CertificateType = class.CertificateType
		res.ProductName = class.ProductName
	}

	info := res.FormattedData.Information
	if res.CertificateType != "" {
		info.Set([]string{"certificate_type"}, res.CertificateType)
	}
	if res.ProductName != "" {
		info.Set([]string{"product_name"}, res.ProductName)
	}
	if v, ok := info.Get("certificate_type"); ok {
		res.CertificateType = v
	}
	if v, ok := info.Get("product_name"); ok {
		res.ProductName = v
	}
}

// saveArtifact stores the result as JSON and returns its key. Storage
// failures are logged and leave the key empty.
func (s *extractionService) saveArtifact(ctx context.Context, res *domain.ExtractionResult, log *zap.Logger) string {
	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Error("encoding extraction artifact", zap.Error(err))
		return ""
	}

	key, err := s.uploadArtifact(ctx, res.RequestID, body)
	if err != nil {
		if !errors.Is(err, domain.ErrArtifactUpload) {
			err = fmt.Errorf("%w: %v", domain.ErrArtifactUpload, err)
		}
		log.Error("saving extraction artifact", zap.Error(err))
		return ""
	}
	return key
}

func (s *extractionService) uploadArtifact(ctx context.Context, requestID string, body []byte) (string, error) {
	if s.workspace == nil {
		return s.artifacts.Save(ctx, requestID, bytes.NewReader(body), int64(len(body)))
	}

	scratch, err := s.workspace.Acquire(requestID)
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := scratch.Release(); rerr != nil {
			s.logger.Warn("releasing scratch directory", zap.String("request_id", requestID), zap.Error(rerr))
		}
	}()

	path := filepath.Join(scratch.Dir(), artifactFileName)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	return s.artifacts.Save(ctx, requestID, f, info.Size())
}
