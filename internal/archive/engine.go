package archive

// Engine adapts the package functions to the orchestrators' archiver
// dependency.
type Engine struct{}

func (Engine) Archive(sourceDir string) (string, error)  { return Archive(sourceDir) }
func (Engine) Extract(archivePath, destDir string) error { return Extract(archivePath, destDir) }
