package config

// Knitfile represents the structure of knit.yaml.
type Knitfile struct {
	Entry       string   `yaml:"entry"`
	Output      string   `yaml:"output"`
	Parallelism int      `yaml:"parallelism"`
	MaxModules  int      `yaml:"maxModules"`
	Extensions  []string `yaml:"extensions"`
	Target      string   `yaml:"target"`
	Env         string   `yaml:"env"`
}
