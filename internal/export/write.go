package export

import (
	"github.com/lotas/tabsalvage/internal/applog"
	"github.com/lotas/tabsalvage/internal/fileio"
)

// WriteToFile stores a rendered export at path. The destination is never
// left partially written.
func WriteToFile(data []byte, path string, opts OutputOptions) error {
	err := fileio.WriteAtomic(path, data, fileio.WriteOptions{
		Overwrite:    opts.Overwrite,
		CreateFolder: opts.CreateFolder,
	})
	if err != nil {
		applog.Error("export.write", err, "path", path, "format", opts.Format.AsString())
		return err
	}
	applog.Info("export.saved", "path", path, "format", opts.Format.AsString(), "bytes", len(data))
	return nil
}
