package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Copier copies a font project to a new location, possibly converting it.
type Copier struct {
	// Command converts between differing formats; it is invoked as
	// "<Command> <source> <destination>".
	Command string
	// Output receives the converter's stdout and stderr.
	Output io.Writer
}

// CopyFont copies source to dest. A project copied into its own format is
// copied structurally; other conversions go through the external converter.
// An existing dest is replaced.
func (c *Copier) CopyFont(ctx context.Context, source, dest string) error {
	srcFormat, err := FormatOf(source)
	if err != nil {
		return err
	}
	dstFormat, err := FormatOf(dest)
	if err != nil {
		return err
	}
	if dstFormat.Compiled() {
		return fmt.Errorf("%w: %s is a compile target, not a project format", ErrUnsupportedFormat, dstFormat)
	}

	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}

	if srcFormat == dstFormat {
		if info.IsDir() {
			return os.CopyFS(dest, os.DirFS(source))
		}
		return copyFile(source, dest, info.Mode().Perm())
	}

	cmd := exec.CommandContext(ctx, c.Command, source, dest)
	cmd.Stdout = c.Output
	cmd.Stderr = c.Output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("convert %s to %s: %w", srcFormat, dstFormat, err)
	}
	return nil
}

func copyFile(source, dest string, perm os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
