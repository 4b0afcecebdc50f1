package controllers

// SetExit replaces the process exit of the controller.
func (it *AnalyzeController) SetExit(exit func(code int)) { it.exit = exit }

// SetExit replaces the process exit of the controller.
func (it *DetectController) SetExit(exit func(code int)) { it.exit = exit }
