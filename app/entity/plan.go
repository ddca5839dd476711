package entity

type Plan struct {
	ID   uint64
	Name string

	DurationDays int32
	JobPostLimit int32
	CVViewLimit  int32

	Price int64
}
