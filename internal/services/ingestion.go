package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// IngestionService turns an uploaded resume PDF into searchable chunks
// and headline facts that seed interview session context.
type IngestionService interface {
	IngestResume(ctx context.Context, resumeID uuid.UUID) error
}

type ingestionService struct {
	resumeRepo  repositories.ResumeRepository
	pdfParser   PDFParserService
	chunker     TextChunker
	gemini      GeminiService
	resumeIndex ResumeIndexService
	chunkSize   int
}

func NewIngestionService(
	resumeRepo repositories.ResumeRepository,
	pdfParser PDFParserService,
	chunker TextChunker,
	gemini GeminiService,
	resumeIndex ResumeIndexService,
	chunkSize int,
) IngestionService {
	return &ingestionService{
		resumeRepo:  resumeRepo,
		pdfParser:   pdfParser,
		chunker:     chunker,
		gemini:      gemini,
		resumeIndex: resumeIndex,
		chunkSize:   chunkSize,
	}
}

// IngestResume implements IngestionService.
func (s *ingestionService) IngestResume(ctx context.Context, resumeID uuid.UUID) error {
	if err := s.resumeRepo.UpdateStatus(resumeID, models.ResumeProcessing); err != nil {
		return fmt.Errorf("failed to update resume status: %w", err)
	}

	log.Printf("🔄 Starting ingestion for resume %s\n", resumeID)

	resume, err := s.resumeRepo.FindByID(resumeID)
	if err != nil {
		s.resumeRepo.UpdateError(resumeID, err.Error())
		return fmt.Errorf("failed to get resume: %w", err)
	}

	log.Println("📄 Parsing resume PDF...")
	text, err := s.pdfParser.ExtractText(resume.FilePath)
	if err != nil {
		s.resumeRepo.UpdateError(resumeID, fmt.Sprintf("Failed to parse resume: %v", err))
		return fmt.Errorf("failed to parse resume: %w", err)
	}

	chunks := s.chunker.ChunkText(text, s.chunkSize)
	log.Printf("✂️  Resume split into %d chunks\n", len(chunks))

	for i, chunk := range chunks {
		embedding, err := s.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			s.resumeRepo.UpdateError(resumeID, fmt.Sprintf("Failed to embed chunk %d: %v", i, err))
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if err := s.resumeIndex.UpsertChunk(ctx, resumeID, i, chunk, embedding); err != nil {
			s.resumeRepo.UpdateError(resumeID, fmt.Sprintf("Failed to index chunk %d: %v", i, err))
			return fmt.Errorf("failed to index chunk %d: %w", i, err)
		}
	}

	facts := extractFacts(text)
	resume.ChunkCount = len(chunks)
	if err := resume.SetFacts(facts); err != nil {
		s.resumeRepo.UpdateError(resumeID, err.Error())
		return err
	}
	if err := s.resumeRepo.UpdateIngestion(resumeID, resume.Facts, len(chunks)); err != nil {
		return fmt.Errorf("failed to save ingestion results: %w", err)
	}

	log.Printf("✅ Ingestion completed for resume %s (%d facts)\n", resumeID, len(facts))
	return nil
}

// extractFacts pulls headline facts out of resume text: a short summary
// plus one entry per taxonomy skill the text mentions. These become the
// context sources contextual questions are generated from.
func extractFacts(text string) map[string]string {
	facts := map[string]string{}

	summary := text
	if idx := nthLineEnd(text, 5); idx > 0 {
		summary = text[:idx]
	}
	facts["resume.summary"] = truncate(strings.TrimSpace(summary), 500)

	for _, profile := range KnownSkills() {
		if MatchSkillInText(profile, text) {
			key := "resume.skill." + profile.Canonical
			facts[key] = firstMentionContext(text, profile)
		}
	}

	return facts
}

// firstMentionContext returns the line where a skill is first mentioned,
// as provenance for the generated question.
func firstMentionContext(text string, profile SkillProfile) string {
	for _, line := range strings.Split(text, "\n") {
		if MatchSkillInText(profile, line) {
			return truncate(strings.TrimSpace(line), 300)
		}
	}
	return profile.Canonical
}

func nthLineEnd(text string, n int) int {
	count := 0
	for i, r := range text {
		if r == '\n' {
			count++
			if count == n {
				return i
			}
		}
	}
	return -1
}
