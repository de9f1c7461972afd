package models

// Scoping, config and discovery kinds. Pods consume these at admission
// time; no control loop reconciles them.

type Namespace struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

type ConfigMap struct {
	Metadata Metadata          `json:"metadata" yaml:"metadata"`
	Data     map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
}

type Secret struct {
	Metadata Metadata          `json:"metadata" yaml:"metadata"`
	Data     map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
}

type Service struct {
	Metadata Metadata    `json:"metadata" yaml:"metadata"`
	Spec     ServiceSpec `json:"spec" yaml:"spec"`
}

type ServiceSpec struct {
	Selector map[string]string `json:"selector" yaml:"selector"`
	Type     string            `json:"type,omitempty" yaml:"type,omitempty"` // ClusterIP or NodePort
	Ports    []ServicePort     `json:"ports,omitempty" yaml:"ports,omitempty"`
}

type ServicePort struct {
	Port       int `json:"port" yaml:"port"`
	TargetPort int `json:"targetPort" yaml:"targetPort"`
	NodePort   int `json:"nodePort,omitempty" yaml:"nodePort,omitempty"`
}

type Ingress struct {
	Metadata Metadata    `json:"metadata" yaml:"metadata"`
	Spec     IngressSpec `json:"spec" yaml:"spec"`
}

type IngressSpec struct {
	Rules []IngressRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

type IngressRule struct {
	Host        string `json:"host" yaml:"host"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	ServicePort int    `json:"servicePort" yaml:"servicePort"`
}
