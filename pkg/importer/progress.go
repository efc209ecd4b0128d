package importer

// ProgressReporter receives coarse progress of a run: Start with the
// number of steps, Update as steps complete, Finish at the end.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

const (
	sceneSteps = 12
	batchSteps = 8
)

type noopProgress struct{}

func (noopProgress) Start(int64)  {}
func (noopProgress) Update(int64) {}
func (noopProgress) Finish()      {}
