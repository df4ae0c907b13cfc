package workers

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/camden-git/photocmsbackend/config"
	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/repository"
	"github.com/camden-git/photocmsbackend/services"
)

// Task type constants
const (
	TaskPhotoPipeline   = "photo_pipeline"    // metadata, then sizes, then publish recompute
	TaskGenerateSizes   = "generate_sizes"    // all missing renditions for one photo
	TaskGenerateForSize = "generate_for_size" // one rendition for every photo
	TaskExtractMetadata = "extract_metadata"
	TaskDeleteFiles     = "delete_files" // best-effort storage cleanup
)

// Task is one unit of background work. Tasks are at-least-once: every
// handler tolerates re-delivery by skipping work that already happened.
type Task struct {
	Type    string
	PhotoID uint
	SizeID  uint
	Paths   []string // delete_files payload
}

// pendingKey deduplicates queued work. Two identical tasks never sit in
// the queue at once; a task becomes queueable again as soon as its
// predecessor finishes.
func (t Task) pendingKey() string {
	if t.Type == TaskDeleteFiles {
		return fmt.Sprintf("%s:%s", t.Type, strings.Join(t.Paths, ","))
	}
	return fmt.Sprintf("%s:%d:%d", t.Type, t.PhotoID, t.SizeID)
}

// TaskProcessor owns the background work queue and its worker pool.
type TaskProcessor struct {
	JobQueue chan Task
	Config   config.Config
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex

	photoRepo repository.PhotoRepositoryInterface
	sizeRepo  repository.SizeRepositoryInterface
	psRepo    repository.PhotoSizeRepositoryInterface
	store     media.Store
	processor *media.Processor
	publisher *services.Publisher
}

func NewTaskProcessor(
	cfg config.Config,
	photoRepo repository.PhotoRepositoryInterface,
	sizeRepo repository.SizeRepositoryInterface,
	psRepo repository.PhotoSizeRepositoryInterface,
	store media.Store,
	processor *media.Processor,
	publisher *services.Publisher,
) *TaskProcessor {
	queueSize := cfg.JobQueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	tp := &TaskProcessor{
		JobQueue:  make(chan Task, queueSize),
		Config:    cfg,
		StopChan:  make(chan struct{}),
		Pending:   make(map[string]bool),
		photoRepo: photoRepo,
		sizeRepo:  sizeRepo,
		psRepo:    psRepo,
		store:     store,
		processor: processor,
		publisher: publisher,
	}
	tp.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go tp.worker(i)
	}
	log.Printf("Started %d task worker(s) with queue size %d", numWorkers, queueSize)
	return tp
}

func (tp *TaskProcessor) worker(id int) {
	defer tp.Wg.Done()

	log.Printf("Task worker %d started", id)
	for {
		select {
		case task, ok := <-tp.JobQueue:
			if !ok {
				log.Printf("Task worker %d stopping: job queue closed", id)
				return
			}

			log.Printf("Worker %d: received task '%s' (photo %d, size %d)", id, task.Type, task.PhotoID, task.SizeID)

			var err error
			switch task.Type {
			case TaskPhotoPipeline:
				err = tp.processPhotoPipeline(task.PhotoID)
			case TaskGenerateSizes:
				err = tp.processGenerateSizes(task.PhotoID)
			case TaskGenerateForSize:
				err = tp.processGenerateForSize(task.SizeID)
			case TaskExtractMetadata:
				err = tp.processExtractMetadata(task.PhotoID)
			case TaskDeleteFiles:
				tp.processDeleteFiles(task.Paths)
			default:
				log.Printf("Worker %d: ERROR unknown task type '%s'", id, task.Type)
			}
			if err != nil {
				log.Printf("Worker %d: ERROR task '%s' (photo %d, size %d): %v", id, task.Type, task.PhotoID, task.SizeID, err)
			}

			tp.Mutex.Lock()
			delete(tp.Pending, task.pendingKey())
			tp.Mutex.Unlock()

		case <-tp.StopChan:
			log.Printf("Task worker %d stopping: stop signal received", id)
			return
		}
	}
}

// QueueTask queues a task unless an identical one is already pending.
// Returns false when deduplicated or when the queue is full; the
// consistency sweep re-discovers dropped work on its next pass.
func (tp *TaskProcessor) QueueTask(task Task) bool {
	key := task.pendingKey()

	tp.Mutex.Lock()
	if tp.Pending[key] {
		tp.Mutex.Unlock()
		return false
	}
	tp.Pending[key] = true
	tp.Mutex.Unlock()

	select {
	case tp.JobQueue <- task:
		return true
	default:
		log.Printf("WARNING: task queue full, dropping '%s' for photo %d", task.Type, task.PhotoID)
		tp.Mutex.Lock()
		delete(tp.Pending, key)
		tp.Mutex.Unlock()
		return false
	}
}

func (tp *TaskProcessor) Stop() {
	log.Println("Stopping task workers...")
	close(tp.StopChan)
	tp.Wg.Wait()
	log.Println("All task workers stopped")
}
