package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// Worker runs resume ingestion jobs off a channel queue, with a poller
// that re-enqueues resumes stuck in the queued state.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueResume(resumeID uuid.UUID)
}

type worker struct {
	resumeRepo  repositories.ResumeRepository
	ingestion   IngestionService
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	resumeRepo repositories.ResumeRepository,
	ingestion IngestionService,
	concurrency int,
) Worker {
	return &worker{
		resumeRepo:  resumeRepo,
		ingestion:   ingestion,
		jobQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting ingestion worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingResumes(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping ingestion worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Ingestion worker stopped")
}

// EnqueueResume implements Worker.
func (w *worker) EnqueueResume(resumeID uuid.UUID) {
	select {
	case w.jobQueue <- resumeID:
		log.Printf("📥 Resume %s enqueued for ingestion\n", resumeID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue resume %s\n", resumeID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Ingestion worker #%d stopped\n", workerID)
			return
		case resumeID := <-w.jobQueue:
			log.Printf("👷 Worker #%d ingesting resume %s\n", workerID, resumeID)
			if err := w.ingestion.IngestResume(ctx, resumeID); err != nil {
				log.Printf("❌ Worker #%d failed to ingest resume %s: %v\n", workerID, resumeID, err)
			}
		}
	}
}

func (w *worker) pollPendingResumes(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.resumeRepo.FindPending(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending resumes: %v\n", err)
				continue
			}
			for _, resume := range pending {
				w.EnqueueResume(resume.ID)
			}
		}
	}
}
