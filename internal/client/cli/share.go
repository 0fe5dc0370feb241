package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/karimrkhoury/ziplock/internal/common"
	"github.com/karimrkhoury/ziplock/internal/progress"
	"github.com/karimrkhoury/ziplock/internal/publish"
)

// generatedPasswordLength matches what fits comfortably in a chat message
// next to the share link.
const generatedPasswordLength = 12

// share zips the given files behind a password and publishes the archive.
func (a *App) share(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	generate := fs.Bool("g", false, "generate a random password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("usage: ziplock share [-g] <file>...")
	}

	password, err := a.sharePassword(*generate)
	if err != nil {
		return err
	}

	files, cleanup, err := openFiles(paths)
	if err != nil {
		return err
	}
	defer cleanup()

	comp := progress.NewComposer(progress.DefaultMessages, func(u progress.Update) {
		fmt.Fprintf(a.out, "\r%3d%%  %-40s", u.Percent, u.Message)
	})

	res, err := a.pipeline.Run(ctx, publish.Job{Files: files, Password: password}, comp)
	fmt.Fprintln(a.out)
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%s", ve.Reason)
		}
		return err
	}

	saved := 0.0
	if res.Stats.OriginalSize > 0 {
		saved = 100 * (1 - float64(res.Stats.CompressedSize)/float64(res.Stats.OriginalSize))
	}
	fmt.Fprintf(a.out, "Done! %s squeezed to %s (%.0f%% saved, %.1fs).\n",
		common.FormatSize(res.Stats.OriginalSize), common.FormatSize(res.Stats.CompressedSize),
		saved, res.Stats.ProcessingSeconds)
	fmt.Fprintf(a.out, "Share link (valid 24h): %s\n", a.client.ShareURL(res.ShareID))
	if *generate {
		fmt.Fprintf(a.out, "Password: %s\n", password)
	}
	fmt.Fprintln(a.out, "Send the link and the password over different channels.")
	return nil
}

func (a *App) sharePassword(generate bool) (string, error) {
	if generate {
		return common.GeneratePassword(generatedPasswordLength)
	}
	pw, err := GetPassword(a.out, "Choose a password (min 8 characters): ")
	if err != nil {
		return "", err
	}
	defer common.WipeBytes(pw)

	confirm, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeBytes(confirm)

	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}

// openFiles stats and opens every path up front so a bad selection fails
// before any work happens.
func openFiles(paths []string) ([]publish.File, func(), error) {
	var files []publish.File
	var opened []*os.File

	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if fi.IsDir() {
			cleanup()
			return nil, nil, fmt.Errorf("%s is a directory, select files", p)
		}
		f, err := os.Open(p)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opened = append(opened, f)
		files = append(files, publish.File{Name: fi.Name(), Size: fi.Size(), Source: f})
	}
	return files, cleanup, nil
}
