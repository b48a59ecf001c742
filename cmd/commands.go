package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/SUSean/2015osteam20MP4/pkg/config"
	"github.com/SUSean/2015osteam20MP4/pkg/disk"
	"github.com/SUSean/2015osteam20MP4/pkg/fs"
	"github.com/SUSean/2015osteam20MP4/pkg/logg"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"
)

func setup(c *cli.Context) (*config.FSConfig, error) {
	fsconfig, err := PopulateConfig(c)
	if err != nil {
		return nil, err
	}

	config.SetGConfig(fsconfig)
	logg.InitLogHook(fsconfig.LogDir, fsconfig.LogMaxAge, fsconfig.LogRotationTime)
	logg.InitLogger()
	return fsconfig, nil
}

func mount(c *cli.Context, format bool) (*fs.FileSystem, *disk.FileDisk, error) {
	fsconfig, err := setup(c)
	if err != nil {
		return nil, nil, err
	}

	dev, err := disk.OpenFileDisk(fsconfig.DiskPath, format)
	if err != nil {
		return nil, nil, err
	}

	fsys, err := fs.NewFileSystem(dev, format, nil)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return fsys, dev, nil
}

func runFormat(c *cli.Context) error {
	fsconfig, err := setup(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(fsconfig.DiskPath); err == nil && !c.Bool("force") {
		// reformatting loses everything on the image; ask when a human
		// is at the other end, refuse otherwise
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("disk image %s exists; pass --force to reformat", fsconfig.DiskPath)
		}
		fmt.Fprintf(os.Stderr, "reformat %s and lose its contents? [y/N] ", fsconfig.DiskPath)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "y" {
			return fmt.Errorf("aborted")
		}
	}

	dev, err := disk.OpenFileDisk(fsconfig.DiskPath, true)
	if err != nil {
		return err
	}
	defer dev.Close()

	fsys, err := fs.NewFileSystem(dev, true, nil)
	if err != nil {
		return err
	}
	fsys.Destroy()

	fmt.Printf("formatted %s\n", fsconfig.DiskPath)
	return nil
}

func oneArg(c *cli.Context) (string, error) {
	if len(c.Args()) != 1 {
		return "", fmt.Errorf("%s needs exactly one path argument", c.Command.Name)
	}
	return c.Args()[0], nil
}

func runCreate(c *cli.Context) error {
	path, err := oneArg(c)
	if err != nil {
		return err
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	return fsys.Create(path, int32(c.Int("size")), false)
}

func runMkdir(c *cli.Context) error {
	path, err := oneArg(c)
	if err != nil {
		return err
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	return fsys.Create(path, 0, true)
}

func runPut(c *cli.Context) error {
	if len(c.Args()) != 2 {
		return fmt.Errorf("put needs <hostpath> <path>")
	}
	hostPath, path := c.Args()[0], c.Args()[1]

	data, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	if err := fsys.Create(path, int32(len(data)), false); err != nil {
		return err
	}

	id, err := fsys.OpenDescriptor(path)
	if err != nil {
		return err
	}
	defer fsys.Close(id)

	for len(data) > 0 {
		n, err := fsys.Write(id, data)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("short write to %s", path)
		}
		data = data[n:]
	}
	return nil
}

func runCat(c *cli.Context) error {
	path, err := oneArg(c)
	if err != nil {
		return err
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	id, err := fsys.OpenDescriptor(path)
	if err != nil {
		return err
	}
	defer fsys.Close(id)

	buf := make([]byte, 4096)
	for {
		n, err := fsys.Read(id, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return err
		}
	}
}

func runLs(c *cli.Context) error {
	path := "/"
	if len(c.Args()) == 1 {
		path = c.Args()[0]
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	names, err := fsys.List(path, c.Bool("r"))
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runRm(c *cli.Context) error {
	path, err := oneArg(c)
	if err != nil {
		return err
	}

	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	return fsys.Remove(path, c.Bool("r"))
}

func runPrint(c *cli.Context) error {
	fsys, dev, err := mount(c, false)
	if err != nil {
		return err
	}
	defer dev.Close()
	defer fsys.Destroy()

	return fsys.Print(os.Stdout)
}
