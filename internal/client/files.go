package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdio {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, asUsageError(err)
	}
	return data, nil
}

func readJSON(path string, stdin io.Reader, v any) error {
	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, v); err != nil {
		return asUsageError(fmt.Errorf("%s: malformed JSON: %w", displayName(path), err))
	}
	return nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == stdio {
		_, err := stdout.Write(data)
		return err
	}
	return writeFileAtomic(path, data)
}

func jsonLine(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeJSON(path string, stdout io.Writer, v any) error {
	data, err := jsonLine(v)
	if err != nil {
		return err
	}
	return writeOutput(path, stdout, data)
}

func displayName(path string) string {
	if path == stdio {
		return "stdin"
	}
	return path
}

// stagedFile is a fully written temp file waiting to replace its target.
type stagedFile struct {
	tmp, target string
}

func stageFile(target string, data []byte) (stagedFile, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return stagedFile{}, err
	}
	staged := stagedFile{tmp: f.Name(), target: target}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(staged.tmp, 0o600)
	}
	if err != nil {
		_ = os.Remove(staged.tmp)
		return stagedFile{}, err
	}
	return staged, nil
}

func (s stagedFile) commit() error  { return os.Rename(s.tmp, s.target) }
func (s stagedFile) discard() error { return os.Remove(s.tmp) }

func writeFileAtomic(path string, data []byte) error {
	staged, err := stageFile(path, data)
	if err != nil {
		return err
	}
	return staged.commit()
}

// fileContent is the new content of one file.
type fileContent struct {
	path string
	data []byte
}

// stageFiles writes every file next to its target. On error nothing is
// left behind.
func stageFiles(files []fileContent) ([]stagedFile, error) {
	staged := make([]stagedFile, 0, len(files))
	for _, f := range files {
		s, err := stageFile(f.path, f.data)
		if err != nil {
			errs := []error{fmt.Errorf("write %s: %w", f.path, err)}
			for _, done := range staged {
				errs = append(errs, done.discard())
			}
			return nil, errors.Join(errs...)
		}
		staged = append(staged, s)
	}
	return staged, nil
}

func discardFiles(staged []stagedFile) error {
	var errs []error
	for _, s := range staged {
		errs = append(errs, s.discard())
	}
	return errors.Join(errs...)
}

// commitFiles renames staged files over their targets. A file that cannot
// be renamed keeps its temp copy and is named in the error.
func commitFiles(staged []stagedFile) error {
	var errs []error
	for _, s := range staged {
		if err := s.commit(); err != nil {
			errs = append(errs, fmt.Errorf("replace %s (new content kept in %s): %w", s.target, s.tmp, err))
		}
	}
	return errors.Join(errs...)
}
