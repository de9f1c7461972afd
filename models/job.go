package models

// JobNameLabel ties pods back to the Job that created them; CronJobNameLabel
// ties jobs back to their CronJob.
const (
	JobNameLabel     = "job-name"
	CronJobNameLabel = "cronjob-name"
)

type Job struct {
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Spec     JobSpec   `json:"spec" yaml:"spec"`
	Status   JobStatus `json:"status" yaml:"status"`
}

type JobSpec struct {
	Completions   int           `json:"completions" yaml:"completions"`
	Parallelism   int           `json:"parallelism" yaml:"parallelism"`
	BackoffLimit  int           `json:"backoffLimit" yaml:"backoffLimit"`
	RestartPolicy RestartPolicy `json:"restartPolicy,omitempty" yaml:"restartPolicy,omitempty"`

	// TicksToComplete is how many ticks a pod must run before it
	// succeeds, absent scenario interference. Defaults to 2.
	TicksToComplete int `json:"ticksToComplete,omitempty" yaml:"ticksToComplete,omitempty"`

	Selector map[string]string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Template PodTemplate       `json:"template" yaml:"template"`
}

type JobStatus struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
	Active    int `json:"active" yaml:"active"`

	// NextRetryAt gates replacement pod creation after a failure.
	NextRetryAt int `json:"nextRetryAt,omitempty" yaml:"nextRetryAt,omitempty"`

	// AttemptSeq numbers created pods so retries never reuse a name.
	AttemptSeq int `json:"attemptSeq,omitempty" yaml:"attemptSeq,omitempty"`

	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Finished reports whether the job has reached a terminal condition.
func (j *Job) Finished() bool {
	for _, c := range j.Status.Conditions {
		if (c.Type == ConditionComplete || c.Type == ConditionFailed) && c.Status == ConditionTrue {
			return true
		}
	}
	return false
}

// Failed reports whether the job is terminally failed.
func (j *Job) FailedTerminally() bool {
	c := FindCondition(j.Status.Conditions, ConditionFailed)
	return c != nil && c.Status == ConditionTrue
}

type CronJob struct {
	Metadata Metadata      `json:"metadata" yaml:"metadata"`
	Spec     CronJobSpec   `json:"spec" yaml:"spec"`
	Status   CronJobStatus `json:"status" yaml:"status"`
}

type ConcurrencyPolicy string

const (
	ConcurrencyAllow   ConcurrencyPolicy = "Allow"
	ConcurrencyForbid  ConcurrencyPolicy = "Forbid"
	ConcurrencyReplace ConcurrencyPolicy = "Replace"
)

type CronJobSpec struct {
	// Schedule is an interval in ticks, accepted as "@every N",
	// "*/N * * * *", or a bare integer.
	Schedule          string            `json:"schedule" yaml:"schedule"`
	ConcurrencyPolicy ConcurrencyPolicy `json:"concurrencyPolicy,omitempty" yaml:"concurrencyPolicy,omitempty"`
	JobTemplate       JobSpec           `json:"jobTemplate" yaml:"jobTemplate"`
}

type CronJobStatus struct {
	LastScheduleTick *int `json:"lastScheduleTick,omitempty" yaml:"lastScheduleTick,omitempty"`
}
