package pipeline

import "fmt"

// Stage errors classify where an item failed. Their messages become the
// failure outcome's body, so they read as plain causes.

type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("Error resolving content: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Error parsing recipe: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ImagingError never escapes the pipeline: it is collapsed to the
// placeholder image URL at the imaging stage boundary.
type ImagingError struct {
	Err error
}

func (e *ImagingError) Error() string {
	return fmt.Sprintf("Error generating image: %v", e.Err)
}

func (e *ImagingError) Unwrap() error { return e.Err }

type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("Error saving recipe: %v", e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
