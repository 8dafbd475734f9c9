package styling

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"go.uber.org/multierr"
)

// LoadStyleFile reads one MapCSS file. The style ID is derived from the file name.
func LoadStyleFile(fs gofs.Fs, filePath string) (*MapCSSStyle, errorsx.Error) {
	data, err := fs.ReadFile(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filePath", filePath)
	}

	style, err := NewMapCSSStyle(StyleIDFromFileName(filePath), string(data))
	if err != nil {
		return nil, errorsx.Wrap(err, "filePath", filePath)
	}

	return style, nil
}

// LoadStylesFromDir loads every "*.mapcss" file in dirPath. Files that fail to
// load are reported together in the returned error; the other styles are still returned.
// A missing directory holds no styles.
func LoadStylesFromDir(fs gofs.Fs, dirPath string) ([]*MapCSSStyle, error) {
	fileInfos, err := fs.ReadDir(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errorsx.Wrap(err, "dirPath", dirPath)
	}

	var styles []*MapCSSStyle
	var loadErr error
	for _, fileInfo := range fileInfos {
		if fileInfo.IsDir() || !IsStyleFile(fileInfo.Name()) {
			continue
		}

		style, err := LoadStyleFile(fs, filepath.Join(dirPath, fileInfo.Name()))
		if err != nil {
			loadErr = multierr.Append(loadErr, err)
			continue
		}
		styles = append(styles, style)
	}

	return styles, loadErr
}

func IsStyleFile(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), MapCSSFileSuffix)
}
