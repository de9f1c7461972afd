package engine

import (
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// reconcileJobs runs each Job toward its completion count. Only Succeeded
// pods count toward completions; each failure raises the failure counter,
// and reaching backoffLimit marks the Job terminally Failed with partial
// successes preserved. Replacement pods come after a backoff delay.
func reconcileJobs(s *store.State) {
	for _, job := range s.ListJobs("") {
		if job.Metadata.Terminating() || job.Finished() {
			continue
		}
		reconcileJob(s, job)
	}
}

func reconcileJob(s *store.State, job *models.Job) {
	selector := jobSelector(job)
	pods := s.PodsMatching(job.Metadata.Namespace, selector)

	backoffLimit := job.Spec.BackoffLimit
	if backoffLimit <= 0 {
		backoffLimit = 6
	}

	// Let running pods finish their simulated work.
	ticksToComplete := job.Spec.TicksToComplete
	if ticksToComplete <= 0 {
		ticksToComplete = 2
	}
	for _, pod := range pods {
		if pod.Status.Phase == models.PodRunning && !pod.Metadata.Terminating() &&
			pod.Status.Reason == "" && pod.Status.StartedAt != nil &&
			s.Tick-*pod.Status.StartedAt >= ticksToComplete {
			s.MarkPodSucceeded(pod)
			s.RecordEvent(models.EventNormal, "Completed", "Pod", pod.Metadata.Name,
				"pod %s completed", pod.Metadata.Name)
		}
	}

	// Account for failures. Under Never each attempt is its own retained
	// pod object, so the counter is simply the count of Failed pods.
	// Under OnFailure the pod restarts in place and must be counted as
	// it is observed.
	if job.Spec.RestartPolicy == models.RestartOnFailure {
		for _, pod := range pods {
			if pod.Status.Phase == models.PodFailed && !pod.Metadata.Terminating() {
				job.Status.Failed++
				job.Status.NextRetryAt = s.Tick + backoffDelay(job.Status.Failed)
				if job.Status.Failed < backoffLimit {
					s.RestartPodInPlace(pod)
					s.RecordEvent(models.EventWarning, "BackOff", "Job", job.Metadata.Name,
						"restarting pod %s (failure %d/%d)", pod.Metadata.Name, job.Status.Failed, backoffLimit)
				}
			}
		}
	} else {
		failed := 0
		for _, pod := range pods {
			if pod.Status.Phase == models.PodFailed {
				failed++
			}
		}
		if failed > job.Status.Failed {
			job.Status.NextRetryAt = s.Tick + backoffDelay(failed)
		}
		job.Status.Failed = failed
	}

	succeeded := 0
	active := 0
	for _, pod := range pods {
		switch {
		case pod.Status.Phase == models.PodSucceeded:
			succeeded++
		case pod.Active():
			active++
		}
	}
	job.Status.Succeeded = succeeded
	job.Status.Active = active

	// Terminal states.
	if job.Status.Failed >= backoffLimit && succeeded < job.Spec.Completions {
		job.Status.Conditions = models.SetCondition(job.Status.Conditions, models.Condition{
			Type: models.ConditionFailed, Status: models.ConditionTrue,
			Reason: "BackoffLimitExceeded", UpdatedAt: s.Tick,
		})
		s.RecordEvent(models.EventWarning, "BackoffLimitExceeded", "Job", job.Metadata.Name,
			"job %s failed after %d pod failures (%d/%d completions preserved)",
			job.Metadata.Name, job.Status.Failed, succeeded, job.Spec.Completions)
		// stop the remaining attempts; completed pods stay
		for _, pod := range pods {
			if pod.Active() {
				s.MarkPodDeleted(pod)
			}
		}
		job.Status.Active = 0
		logging.Info("Job", "%s terminally failed", job.Metadata.Name)
		return
	}
	if succeeded >= job.Spec.Completions {
		job.Status.Conditions = models.SetCondition(job.Status.Conditions, models.Condition{
			Type: models.ConditionComplete, Status: models.ConditionTrue,
			Reason: "Completed", UpdatedAt: s.Tick,
		})
		s.RecordEvent(models.EventNormal, "Completed", "Job", job.Metadata.Name,
			"job %s completed %d/%d", job.Metadata.Name, succeeded, job.Spec.Completions)
		return
	}

	// Keep parallelism pods working, respecting the backoff gate.
	desired := min(job.Spec.Parallelism, job.Spec.Completions-succeeded)
	if active < desired && s.Tick >= job.Status.NextRetryAt {
		owner := &models.OwnerRef{Kind: "Job", Name: job.Metadata.Name, UID: job.Metadata.UID}
		template := job.Spec.Template
		template.Labels = store.MergeLabels(template.Labels, selector)
		for i := active; i < desired; i++ {
			job.Status.AttemptSeq++
			pod := stampPod(s, owner, job.Metadata.Namespace, job.Metadata.Name, selector, template)
			s.RecordEvent(models.EventNormal, "SuccessfulCreate", "Job", job.Metadata.Name,
				"created pod %s (attempt %d)", pod.Metadata.Name, job.Status.AttemptSeq)
		}
		job.Status.Active = desired
	}
}

// jobSelector defaults to the job-name label when the spec provides none.
func jobSelector(job *models.Job) map[string]string {
	if len(job.Spec.Selector) > 0 {
		return job.Spec.Selector
	}
	return map[string]string{models.JobNameLabel: job.Metadata.Name}
}

// backoffDelay grows exponentially with the failure count, capped so a
// lesson never waits absurdly long: 1, 2, 4, 8, 8, ...
func backoffDelay(failures int) int {
	if failures < 1 {
		return 1
	}
	if failures > 4 {
		return 8
	}
	return 1 << (failures - 1)
}
