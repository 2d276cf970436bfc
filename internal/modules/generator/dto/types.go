package dto

type GenerateInput struct {
	Pillar     string
	Difficulty string
}

type ExerciseOutput struct {
	Title        string
	Mission      string
	TemplateKind string
	Source       string
}

type FailureLine struct {
	Name    string
	Message string
}

type DiagnoseInput struct {
	KataSlug string
	Failures []FailureLine
	Output   string
}

type HintOutput struct {
	Text string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}
