package strata

import "time"

// Cluster represents a managed compute cluster.
type Cluster struct {
	Resource

	Name          string          `json:"name"                     yaml:"name"`
	ProjectID     string          `json:"project_id"               yaml:"project_id"`
	Region        string          `json:"region"                   yaml:"region"`
	Config        *ClusterConfig  `json:"config,omitempty"         yaml:"config,omitempty"`
	Status        ClusterStatus   `json:"status"                   yaml:"status"`
	StatusHistory []ClusterStatus `json:"status_history,omitempty" yaml:"status_history,omitempty"`
	Metrics       *ClusterMetrics `json:"metrics,omitempty"        yaml:"metrics,omitempty"`
}

// ClusterStatus represents the state of a cluster at a point in time.
type ClusterStatus struct {
	State     string    `json:"state"            yaml:"state"` // e.g. "CREATING", "RUNNING", "ERROR", "DELETING"
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	StateTime time.Time `json:"state_time"       yaml:"state_time"`
}

// ClusterConfig represents the shape of a cluster's node groups and software.
type ClusterConfig struct {
	MasterConfig    *InstanceGroupConfig `json:"master_config,omitempty"    yaml:"master_config,omitempty"`
	WorkerConfig    *InstanceGroupConfig `json:"worker_config,omitempty"    yaml:"worker_config,omitempty"`
	SecondaryConfig *InstanceGroupConfig `json:"secondary_config,omitempty" yaml:"secondary_config,omitempty"`
	SoftwareConfig  *SoftwareConfig      `json:"software_config,omitempty"  yaml:"software_config,omitempty"`
	StagingBucket   string               `json:"staging_bucket,omitempty"   yaml:"staging_bucket,omitempty"`
	AutoscalingID   string               `json:"autoscaling_policy_id,omitempty" yaml:"autoscaling_policy_id,omitempty"`
}

// InstanceGroupConfig configures one group of cluster instances.
type InstanceGroupConfig struct {
	NumInstances  int      `json:"num_instances"            yaml:"num_instances"`
	MachineType   string   `json:"machine_type"             yaml:"machine_type"`
	DiskSizeGB    int      `json:"disk_size_gb,omitempty"   yaml:"disk_size_gb,omitempty"`
	Preemptible   bool     `json:"preemptible,omitempty"    yaml:"preemptible,omitempty"`
	InstanceNames []string `json:"instance_names,omitempty" yaml:"instance_names,omitempty"`
}

// SoftwareConfig selects the image and component set installed on a cluster.
type SoftwareConfig struct {
	ImageVersion string            `json:"image_version"        yaml:"image_version"`
	Components   []string          `json:"components,omitempty" yaml:"components,omitempty"`
	Properties   map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// ClusterMetrics holds resource utilization reported by the cluster.
type ClusterMetrics struct {
	HDFSMetrics map[string]int64 `json:"hdfs_metrics,omitempty" yaml:"hdfs_metrics,omitempty"`
	YarnMetrics map[string]int64 `json:"yarn_metrics,omitempty" yaml:"yarn_metrics,omitempty"`
}

// ClusterCreateRequest represents a request to create a cluster.
type ClusterCreateRequest struct {
	// Name is the cluster name (unique within a project and region).
	Name string `json:"name" yaml:"name"`
	// Region places the cluster.
	Region string `json:"region" yaml:"region"`
	// Config describes the node groups and software; nil uses platform defaults.
	Config *ClusterConfig `json:"config,omitempty" yaml:"config,omitempty"`
	// Labels sets labels on the cluster.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// ClusterUpdateRequest represents a request to update a cluster.
type ClusterUpdateRequest struct {
	// Config updates node groups (e.g. worker count); nil leaves it unchanged.
	Config *ClusterConfig `json:"config,omitempty" yaml:"config,omitempty"`
	// Labels replaces the cluster labels; nil leaves them unchanged.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	// UpdateMask names the fields being changed (e.g. "config.worker_config.num_instances").
	UpdateMask []string `json:"update_mask,omitempty" yaml:"update_mask,omitempty"`
}

// DiagnoseClusterResult points at the gathered diagnostic output.
type DiagnoseClusterResult struct {
	OutputURI string `json:"output_uri" yaml:"output_uri"`
}

// WorkflowTemplate represents a reusable workflow definition.
type WorkflowTemplate struct {
	Resource

	ID         string              `json:"id"                   yaml:"id"`
	Version    int                 `json:"version"              yaml:"version"`
	Placement  *WorkflowPlacement  `json:"placement,omitempty"  yaml:"placement,omitempty"`
	Jobs       []TemplateJob       `json:"jobs"                 yaml:"jobs"`
	Parameters []TemplateParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// WorkflowPlacement chooses where a workflow's jobs run: an existing cluster
// selected by labels, or a cluster managed for the lifetime of the workflow.
type WorkflowPlacement struct {
	ClusterSelector map[string]string `json:"cluster_selector,omitempty" yaml:"cluster_selector,omitempty"`
	ManagedCluster  *ManagedCluster   `json:"managed_cluster,omitempty"  yaml:"managed_cluster,omitempty"`
}

// ManagedCluster is a cluster created for a workflow and torn down after it.
type ManagedCluster struct {
	ClusterName string            `json:"cluster_name"     yaml:"cluster_name"`
	Config      *ClusterConfig    `json:"config,omitempty" yaml:"config,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// TemplateJob is one step of a workflow template.
type TemplateJob struct {
	StepID              string            `json:"step_id"                        yaml:"step_id"`
	Type                string            `json:"type"                           yaml:"type"` // e.g. "spark", "hadoop", "query"
	MainClass           string            `json:"main_class,omitempty"           yaml:"main_class,omitempty"`
	MainFileURI         string            `json:"main_file_uri,omitempty"        yaml:"main_file_uri,omitempty"`
	Args                []string          `json:"args,omitempty"                 yaml:"args,omitempty"`
	Properties          map[string]string `json:"properties,omitempty"           yaml:"properties,omitempty"`
	PrerequisiteStepIDs []string          `json:"prerequisite_step_ids,omitempty" yaml:"prerequisite_step_ids,omitempty"`
}

// TemplateParameter is a value substituted into a template at instantiation.
type TemplateParameter struct {
	Name        string   `json:"name"                  yaml:"name"`
	Fields      []string `json:"fields"                yaml:"fields"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkflowTemplateCreateRequest represents a request to create a workflow template.
type WorkflowTemplateCreateRequest struct {
	// ID is the template identifier (unique within a project).
	ID string `json:"id" yaml:"id"`
	// Placement chooses where instantiated workflows run.
	Placement *WorkflowPlacement `json:"placement,omitempty" yaml:"placement,omitempty"`
	// Jobs lists the workflow steps in dependency order.
	Jobs []TemplateJob `json:"jobs" yaml:"jobs"`
	// Parameters declares substitutable fields.
	Parameters []TemplateParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Labels sets labels on the template.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// WorkflowTemplateUpdateRequest replaces a template definition. The server
// rejects the update unless Version matches the current template version.
type WorkflowTemplateUpdateRequest struct {
	Version    int                 `json:"version"              yaml:"version"`
	Placement  *WorkflowPlacement  `json:"placement,omitempty"  yaml:"placement,omitempty"`
	Jobs       []TemplateJob       `json:"jobs"                 yaml:"jobs"`
	Parameters []TemplateParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Labels     map[string]string   `json:"labels,omitempty"     yaml:"labels,omitempty"`
}

// InstantiateRequest starts a workflow from a stored template.
type InstantiateRequest struct {
	// Version pins a template version; 0 uses the latest.
	Version int `json:"version,omitempty" yaml:"version,omitempty"`
	// RequestID makes the instantiation idempotent across retries.
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	// Parameters maps parameter names to substituted values.
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// InstantiateInlineRequest starts a workflow from a template supplied in the
// request body, without storing it.
type InstantiateInlineRequest struct {
	Template  *WorkflowTemplateCreateRequest `json:"template"             yaml:"template"`
	RequestID string                         `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// Job represents a single job run on a cluster.
type Job struct {
	Resource

	Reference            JobReference  `json:"reference"                        yaml:"reference"`
	Placement            *JobPlacement `json:"placement,omitempty"              yaml:"placement,omitempty"`
	Type                 string        `json:"type"                             yaml:"type"`
	MainClass            string        `json:"main_class,omitempty"             yaml:"main_class,omitempty"`
	MainFileURI          string        `json:"main_file_uri,omitempty"          yaml:"main_file_uri,omitempty"`
	Args                 []string      `json:"args,omitempty"                   yaml:"args,omitempty"`
	Status               JobStatus     `json:"status"                           yaml:"status"`
	StatusHistory        []JobStatus   `json:"status_history,omitempty"         yaml:"status_history,omitempty"`
	DriverOutputURI      string        `json:"driver_output_uri,omitempty"      yaml:"driver_output_uri,omitempty"`
	DriverControlFileURI string        `json:"driver_control_file_uri,omitempty" yaml:"driver_control_file_uri,omitempty"`
}

// JobReference identifies a job within a project.
type JobReference struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	JobID     string `json:"job_id"     yaml:"job_id"`
}

// JobPlacement records the cluster a job ran on.
type JobPlacement struct {
	ClusterName string `json:"cluster_name"           yaml:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid,omitempty" yaml:"cluster_uuid,omitempty"`
}

// JobStatus represents a job state transition.
type JobStatus struct {
	State     string    `json:"state"            yaml:"state"` // e.g. "PENDING", "RUNNING", "DONE", "ERROR", "CANCELLED"
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	StateTime time.Time `json:"state_time"       yaml:"state_time"`
}

// JobSubmitRequest represents a request to submit a job.
type JobSubmitRequest struct {
	// Job describes the work to run. Reference.JobID may be left empty for a
	// server-assigned ID.
	Job *Job `json:"job" yaml:"job"`
	// RequestID makes the submission idempotent across retries.
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// JobUpdateRequest represents a request to update a job.
type JobUpdateRequest struct {
	// Labels replaces the job labels; nil leaves them unchanged.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	// UpdateMask names the fields being changed.
	UpdateMask []string `json:"update_mask,omitempty" yaml:"update_mask,omitempty"`
}

// AutoscalingPolicy represents a reusable cluster autoscaling configuration.
type AutoscalingPolicy struct {
	Resource

	ID                   string                `json:"id"                               yaml:"id"`
	WorkerConfig         *InstanceGroupLimits  `json:"worker_config,omitempty"          yaml:"worker_config,omitempty"`
	SecondaryConfig      *InstanceGroupLimits  `json:"secondary_config,omitempty"       yaml:"secondary_config,omitempty"`
	BasicAlgorithm       *BasicAutoscaling     `json:"basic_algorithm,omitempty"        yaml:"basic_algorithm,omitempty"`
}

// InstanceGroupLimits bounds an instance group under autoscaling.
type InstanceGroupLimits struct {
	MinInstances int `json:"min_instances" yaml:"min_instances"`
	MaxInstances int `json:"max_instances" yaml:"max_instances"`
	Weight       int `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// BasicAutoscaling tunes the built-in load-based autoscaling algorithm.
type BasicAutoscaling struct {
	CooldownPeriod       string  `json:"cooldown_period"        yaml:"cooldown_period"`
	ScaleUpFactor        float64 `json:"scale_up_factor"        yaml:"scale_up_factor"`
	ScaleDownFactor      float64 `json:"scale_down_factor"      yaml:"scale_down_factor"`
	GracefulDecommission string  `json:"graceful_decommission_timeout,omitempty" yaml:"graceful_decommission_timeout,omitempty"`
}

// AutoscalingPolicyCreateRequest represents a request to create an autoscaling policy.
type AutoscalingPolicyCreateRequest struct {
	ID              string               `json:"id"                         yaml:"id"`
	WorkerConfig    *InstanceGroupLimits `json:"worker_config,omitempty"    yaml:"worker_config,omitempty"`
	SecondaryConfig *InstanceGroupLimits `json:"secondary_config,omitempty" yaml:"secondary_config,omitempty"`
	BasicAlgorithm  *BasicAutoscaling    `json:"basic_algorithm,omitempty"  yaml:"basic_algorithm,omitempty"`
}

// AutoscalingPolicyUpdateRequest replaces an autoscaling policy definition.
type AutoscalingPolicyUpdateRequest struct {
	WorkerConfig    *InstanceGroupLimits `json:"worker_config,omitempty"    yaml:"worker_config,omitempty"`
	SecondaryConfig *InstanceGroupLimits `json:"secondary_config,omitempty" yaml:"secondary_config,omitempty"`
	BasicAlgorithm  *BasicAutoscaling    `json:"basic_algorithm,omitempty"  yaml:"basic_algorithm,omitempty"`
}

// Operation represents a long-running operation started by a mutating call.
type Operation struct {
	Resource

	Name       string          `json:"name"                 yaml:"name"`
	Target     string          `json:"target,omitempty"     yaml:"target,omitempty"`
	Kind       string          `json:"kind,omitempty"       yaml:"kind,omitempty"` // e.g. "cluster.create", "workflow.instantiate"
	Done       bool            `json:"done"                 yaml:"done"`
	State      string          `json:"state"                yaml:"state"` // e.g. "PENDING", "RUNNING", "DONE", "CANCELLED"
	Error      *OperationError `json:"error,omitempty"      yaml:"error,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"   yaml:"warnings,omitempty"`
	Result     map[string]any  `json:"result,omitempty"     yaml:"result,omitempty"`
}

// OperationError records why an operation failed.
type OperationError struct {
	Code    int    `json:"code"    yaml:"code"`
	Status  string `json:"status"  yaml:"status"`
	Message string `json:"message" yaml:"message"`
}
