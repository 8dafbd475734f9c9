package ownmapdal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jamesrr39/goutil/dirtraversal"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/simon04/OpenCartonaut/ownmap"
)

type ImportStatus int

const (
	ImportStatusQueued     ImportStatus = 1
	ImportStatusInProgress ImportStatus = 2
	ImportStatusDone       ImportStatus = 3
	ImportStatusFailed     ImportStatus = 4
)

var importStatusNames = []string{
	"",
	"Queued",
	"In Progress",
	"Done",
	"Failed",
}

func (i ImportStatus) String() string {
	return importStatusNames[i]
}

func (i ImportStatus) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

type OnImportedSuccessfullyFunc func(collection *ownmap.FeatureCollection)

type ImportQueueItem struct {
	Name            string        `json:"name"`
	RawDataFilePath string        `json:"rawDataFilePath"`
	Status          ImportStatus  `json:"status"`
	ProgressPercent float64       `json:"progressPercent"`
	TimeInProgress  time.Duration `json:"timeInProgress"`
	ErrorMessage    string        `json:"errorMessage,omitempty"`
}

// ImportQueue stores uploaded data files and loads them, one at a time, into feature collections.
type ImportQueue struct {
	logger                 *logpkg.Logger
	fs                     gofs.Fs
	pathsConfig            *PathsConfig
	onImportedSuccessfully OnImportedSuccessfullyFunc
	items                  []*ImportQueueItem
	mu                     *sync.RWMutex
	progressInterval       time.Duration
}

func NewImportQueue(logger *logpkg.Logger, fs gofs.Fs, pathsConfig *PathsConfig, onImportedSuccessfully OnImportedSuccessfullyFunc) *ImportQueue {
	return &ImportQueue{
		logger:                 logger,
		fs:                     fs,
		pathsConfig:            pathsConfig,
		onImportedSuccessfully: onImportedSuccessfully,
		items:                  []*ImportQueueItem{},
		mu:                     new(sync.RWMutex),
		progressInterval:       2 * time.Second,
	}
}

// GetItems returns a snapshot of the queue.
func (q *ImportQueue) GetItems() []ImportQueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()
	items := make([]ImportQueueItem, 0, len(q.items))
	for _, item := range q.items {
		items = append(items, *item)
	}
	return items
}

func (q *ImportQueue) AddItemToQueue(rawData io.Reader, fileName string) errorsx.Error {
	var err error

	tryingToGoUp := dirtraversal.IsTryingToTraverseUp(fileName)
	if tryingToGoUp {
		return errorsx.Errorf("not allowed to traverse up with filename %q", fileName)
	}

	dataFileType, err := DataFileTypeFromPath(fileName)
	if err != nil {
		return errorsx.Wrap(err)
	}

	name := filepath.Base(fileName)
	rawDataFilePath, err := GenerateFilePathForNewDiskFile(
		q.fs,
		q.pathsConfig.RawDataFilesDir,
		strings.TrimSuffix(strings.TrimSuffix(name, filepath.Ext(name)), ".osm"),
		dataFileType.Suffix(),
	)
	if err != nil {
		return errorsx.Wrap(err)
	}

	f, err := q.fs.Create(rawDataFilePath)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer f.Close()

	_, err = io.Copy(f, rawData)
	if err != nil {
		return errorsx.Wrap(err)
	}

	item := &ImportQueueItem{
		Name:            name,
		RawDataFilePath: rawDataFilePath,
		Status:          ImportStatusQueued,
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.processNext()
	return nil
}

func (q *ImportQueue) processNext() {
	nextItem := q.getNextItemToProcess()
	if nextItem == nil {
		return
	}

	go func() {
		collection, err := q.importQueueItem(nextItem)
		if err != nil {
			q.logger.Error(
				"failed to import queue item. Raw Data file: %q.\nError: %q\nStack: %s\n",
				nextItem.RawDataFilePath, err.Error(), err.Stack())
		} else {
			q.onImportedSuccessfully(collection)
		}
		q.processNext()
	}()
}

// getNextItemToProcess moves the first queued item to in progress, unless an import is already running.
func (q *ImportQueue) getNextItemToProcess() *ImportQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		if item.Status == ImportStatusInProgress {
			// there is already an import in progress. Wait.
			return nil
		}
	}

	for _, item := range q.items {
		if item.Status == ImportStatusQueued {
			item.Status = ImportStatusInProgress
			return item
		}
	}

	// all imports are finished
	return nil
}

func (q *ImportQueue) importQueueItem(item *ImportQueueItem) (*ownmap.FeatureCollection, errorsx.Error) {
	startTime := time.Now()
	done := make(chan struct{})
	defer close(done)

	onPBFReaderCreated := func(pbfReader PBFReader) {
		go func() {
			totalSize := pbfReader.TotalSize()
			ticker := time.NewTicker(q.progressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
				}

				if totalSize == 0 {
					continue
				}
				progressPercent := float64(pbfReader.FullyScannedBytes()) * 100 / float64(totalSize)

				q.mu.Lock()
				item.TimeInProgress = time.Since(startTime)
				item.ProgressPercent = progressPercent
				q.mu.Unlock()
			}
		}()
	}

	collection, err := readDataFile(context.Background(), q.fs, item.RawDataFilePath, item.Name, onPBFReaderCreated)

	q.mu.Lock()
	defer q.mu.Unlock()
	item.TimeInProgress = time.Since(startTime)
	if err != nil {
		item.Status = ImportStatusFailed
		item.ErrorMessage = err.Error()
		return nil, err
	}

	item.Status = ImportStatusDone
	item.ProgressPercent = 100
	return collection, nil
}

func GenerateFilePathForNewDiskFile(fs gofs.Fs, dirPath, fileName, suffix string) (string, errorsx.Error) {
	var err error
	for i := 0; i < 1000000; i++ {
		var id string
		if i != 0 {
			id = fmt.Sprintf("_%d", i)
		}

		fileName := fmt.Sprintf("%s%s%s", fileName, id, suffix)
		filePath := filepath.Join(dirPath, fileName)

		_, err = fs.Stat(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return "", errorsx.Wrap(err)
			}
		}

		if err == nil {
			// file already exists
			continue
		}

		return filePath, nil
	}

	return "", errorsx.Errorf("ran out of numbers for suffix")
}
