package engine

import (
	"fmt"
	"strconv"
	"strings"

	"kubesim/models"
	"kubesim/store"
)

// reconcileCronJobs stamps out a Job on every schedule tick. Forbid skips
// the run silently while a prior Job is still incomplete; Replace tears
// the prior Job down and starts over.
func reconcileCronJobs(s *store.State) {
	for _, cj := range s.ListCronJobs("") {
		if cj.Metadata.Terminating() {
			continue
		}
		interval := scheduleInterval(cj.Spec.Schedule)
		if s.Tick%interval != 0 {
			continue
		}

		active := activeCronJobs(s, cj)
		switch cj.Spec.ConcurrencyPolicy {
		case models.ConcurrencyForbid:
			if len(active) > 0 {
				continue
			}
		case models.ConcurrencyReplace:
			for _, prior := range active {
				for _, pod := range s.PodsMatching(prior.Metadata.Namespace, jobSelector(prior)) {
					s.MarkPodDeleted(pod)
				}
				s.RemoveJob(prior)
				s.RecordEvent(models.EventNormal, "SuccessfulDelete", "CronJob", cj.Metadata.Name,
					"replaced job %s", prior.Metadata.Name)
			}
		}

		job := newScheduledJob(s, cj)
		s.AddJob(job)
		tick := s.Tick
		cj.Status.LastScheduleTick = &tick
		s.RecordEvent(models.EventNormal, "SuccessfulCreate", "CronJob", cj.Metadata.Name,
			"created job %s", job.Metadata.Name)
	}
}

func newScheduledJob(s *store.State, cj *models.CronJob) *models.Job {
	name := fmt.Sprintf("%s-%d", cj.Metadata.Name, s.Tick)
	spec := cj.Spec.JobTemplate
	if len(spec.Selector) == 0 {
		spec.Selector = map[string]string{models.JobNameLabel: name}
	}
	return &models.Job{
		Metadata: models.Metadata{
			Name:      name,
			Namespace: cj.Metadata.Namespace,
			UID:       s.NewUID(),
			Labels:    map[string]string{models.CronJobNameLabel: cj.Metadata.Name},
			OwnerRef:  &models.OwnerRef{Kind: "CronJob", Name: cj.Metadata.Name, UID: cj.Metadata.UID},
			CreatedAt: s.Tick,
		},
		Spec: spec,
	}
}

// activeCronJobs returns the cron's unfinished jobs.
func activeCronJobs(s *store.State, cj *models.CronJob) []*models.Job {
	var out []*models.Job
	for _, job := range s.ListJobs(cj.Metadata.Namespace) {
		if job.Metadata.Label(models.CronJobNameLabel) == cj.Metadata.Name &&
			!job.Finished() && !job.Metadata.Terminating() {
			out = append(out, job)
		}
	}
	return out
}

// scheduleInterval reads the schedule as a tick interval: "@every 5",
// "*/5 * * * *", or a bare "5" all mean every fifth tick. Anything else
// fires every tick.
func scheduleInterval(schedule string) int {
	text := strings.TrimSpace(schedule)
	text = strings.TrimPrefix(text, "@every ")
	if strings.HasPrefix(text, "*/") {
		if fields := strings.Fields(text); len(fields) > 0 {
			text = strings.TrimPrefix(fields[0], "*/")
		}
	}
	if n, err := strconv.Atoi(text); err == nil && n > 0 {
		return n
	}
	return 1
}
