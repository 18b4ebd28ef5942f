package use_cases

import "where2eat-worker/domain/models"

// SplitIntoBatches cuts an ordered video list into fixed-size batches.
// All batches have exactly size tasks except possibly the last;
// concatenating them reproduces the input order.
func SplitIntoBatches(tasks []models.VideoTask, size int) []models.VideoBatch {
	if size <= 0 {
		size = 1
	}
	if len(tasks) == 0 {
		return nil
	}

	batches := make([]models.VideoBatch, 0, (len(tasks)+size-1)/size)
	for start := 0; start < len(tasks); start += size {
		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}
		batch := models.VideoBatch{
			Index: len(batches),
			Tasks: make([]models.VideoTask, end-start),
		}
		copy(batch.Tasks, tasks[start:end])
		batches = append(batches, batch)
	}
	return batches
}
