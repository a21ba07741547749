package migration

import "fmt"

// SourceFetchError источник не смог отдать строки
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("error fetching data from source table %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// EmptySourceError источник пуст, целевая таблица при этом не трогается
type EmptySourceError struct {
	Source string
}

func (e *EmptySourceError) Error() string {
	return "no data found in source table: " + e.Source
}
