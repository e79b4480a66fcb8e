package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrOutsideRoot = errors.New("path outside of storage root")
	ErrTooLarge    = errors.New("file too large")
	ErrFileLimit   = errors.New("over file limit")

	errSkip = errors.New("non-regular file")
)

var DefaultFileLimit = 1000

// Store keeps uploaded and downloaded torrent files. Paths handed out by
// Save are rooted at root so they can be shown to and sent back by clients.
type Store struct {
	FileLimit int
	fs        afero.Fs
	root      string
}

func New(fs afero.Fs, root string) *Store {
	return &Store{
		FileLimit: DefaultFileLimit,
		fs:        fs,
		root:      filepath.Clean(root),
	}
}

func (s *Store) Root() string { return s.root }

func (s *Store) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return filepath.Join(string(filepath.Separator), rel), nil
}

// Save copies r into a new file named after name and returns its path.
// limit caps the size in bytes when positive.
func (s *Store) Save(name string, r io.Reader, limit int64) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." {
		base = "upload.torrent"
	}
	rel := uuid.NewString() + "-" + base
	f, err := s.fs.OpenFile(string(filepath.Separator)+rel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && limit > 0 && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		s.fs.Remove(string(filepath.Separator) + rel)
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	return filepath.Join(s.root, rel), nil
}

func (s *Store) Open(path string) (afero.File, error) {
	rel, err := s.rel(path)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(rel)
}

func (s *Store) Remove(path string) error {
	rel, err := s.rel(path)
	if err != nil {
		return err
	}
	return s.fs.Remove(rel)
}

type Node struct {
	Name     string
	Size     int64
	Modified time.Time
	Children []*Node
}

// List walks the store. Hidden and irregular files are skipped, and the walk
// fails once more than FileLimit entries were seen.
func (s *Store) List() (*Node, error) {
	top := string(filepath.Separator)
	info, err := s.fs.Stat(top)
	if err != nil {
		return nil, err
	}
	root := &Node{}
	if err := s.list(top, info, root, new(int)); err != nil {
		return nil, err
	}
	return root, nil
}

func (s *Store) list(path string, info os.FileInfo, node *Node, n *int) error {
	if (!info.IsDir() && !info.Mode().IsRegular()) || (path != string(filepath.Separator) && strings.HasPrefix(info.Name(), ".")) {
		return errSkip
	}
	(*n)++
	if *n > s.FileLimit {
		return fmt.Errorf("%w (%d)", ErrFileLimit, s.FileLimit)
	}
	node.Name = info.Name()
	node.Size = info.Size()
	node.Modified = info.ModTime()
	if !info.IsDir() {
		return nil
	}
	children, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return fmt.Errorf("listing %s: %w", path, err)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })
	node.Size = 0
	for _, i := range children {
		c := &Node{}
		err := s.list(filepath.Join(path, i.Name()), i, c, n)
		if err == errSkip {
			continue
		}
		if err != nil {
			return err
		}
		node.Size += c.Size
		node.Children = append(node.Children, c)
	}
	return nil
}
