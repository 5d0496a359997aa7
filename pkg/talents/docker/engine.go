package docker

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
)

// ErrNoSuchContainer is returned by an Engine when a named container does
// not exist.
var ErrNoSuchContainer = errors.New("no such container")

// Container is one row of a container listing.
type Container struct {
	Name   string
	Image  string
	State  string
	Status string
}

// Mount is a volume or bind mount.
type Mount struct {
	Source      string
	Destination string
}

// Detail is the inspected state of a single container.
type Detail struct {
	Name      string
	Image     string
	Status    string
	StartedAt string
	// Ports renders as "host->container" or the bare container port.
	Ports  []string
	Env    []string
	Mounts []Mount
}

// Image is one row of an image listing.
type Image struct {
	ID   string
	Tags []string
	Size int64
}

// Engine is the subset of the container runtime the talent uses.
type Engine interface {
	Containers(ctx context.Context) ([]Container, error)
	Inspect(ctx context.Context, name string) (Detail, error)
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Logs(ctx context.Context, name string, tail int) (string, error)
	Images(ctx context.Context) ([]Image, error)
	Close() error
}

// Connector opens an Engine. host is empty for the environment default.
type Connector func(ctx context.Context, host string) (Engine, error)

// Connect dials the Docker daemon and pings it.
func Connect(ctx context.Context, host string) (Engine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	c, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create docker client")
	}
	if _, err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, errors.Wrap(err, "ping docker daemon")
	}
	return &engine{c: c}, nil
}

type engine struct {
	c *client.Client
}

func (e *engine) Containers(ctx context.Context) ([]Container, error) {
	list, err := e.c.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, err
	}
	out := make([]Container, 0, len(list))
	for _, s := range list {
		name := shortID(s.ID)
		if len(s.Names) > 0 {
			name = strings.TrimPrefix(s.Names[0], "/")
		}
		img := s.Image
		if img == "" {
			img = shortID(s.ImageID)
		}
		out = append(out, Container{Name: name, Image: img, State: s.State, Status: s.Status})
	}
	return out, nil
}

func (e *engine) Inspect(ctx context.Context, name string) (Detail, error) {
	resp, err := e.inspect(ctx, name)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Name: name}
	if resp.ContainerJSONBase != nil && resp.State != nil {
		d.Status = resp.State.Status
		d.StartedAt = resp.State.StartedAt
	}
	if resp.Config != nil {
		d.Image = resp.Config.Image
		d.Env = resp.Config.Env
	}
	if resp.NetworkSettings != nil {
		for port, bindings := range resp.NetworkSettings.Ports {
			if len(bindings) == 0 {
				d.Ports = append(d.Ports, string(port))
				continue
			}
			for _, b := range bindings {
				d.Ports = append(d.Ports, b.HostPort+"->"+string(port))
			}
		}
		sort.Strings(d.Ports)
	}
	for _, m := range resp.Mounts {
		d.Mounts = append(d.Mounts, Mount{Source: m.Source, Destination: m.Destination})
	}
	return d, nil
}

func (e *engine) inspect(ctx context.Context, name string) (container.InspectResponse, error) {
	resp, err := e.c.ContainerInspect(ctx, name)
	if err != nil {
		return resp, notFound(err)
	}
	return resp, nil
}

func (e *engine) Start(ctx context.Context, name string) error {
	return notFound(e.c.ContainerStart(ctx, name, container.StartOptions{}))
}

func (e *engine) Stop(ctx context.Context, name string) error {
	return notFound(e.c.ContainerStop(ctx, name, container.StopOptions{}))
}

func (e *engine) Restart(ctx context.Context, name string) error {
	return notFound(e.c.ContainerRestart(ctx, name, container.StopOptions{}))
}

// Logs merges stdout and stderr. Containers without a TTY multiplex both
// streams and are split with stdcopy.
func (e *engine) Logs(ctx context.Context, name string, tail int) (string, error) {
	resp, err := e.inspect(ctx, name)
	if err != nil {
		return "", err
	}
	rc, err := e.c.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return "", notFound(err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if resp.Config != nil && resp.Config.Tty {
		_, err = io.Copy(&buf, rc)
	} else {
		_, err = stdcopy.StdCopy(&buf, &buf, rc)
	}
	if err != nil {
		return "", errors.Wrap(err, "read logs")
	}
	return strings.ToValidUTF8(buf.String(), "�"), nil
}

func (e *engine) Images(ctx context.Context) ([]Image, error) {
	list, err := e.c.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]Image, 0, len(list))
	for _, s := range list {
		var tags []string
		for _, t := range s.RepoTags {
			if t != "<none>:<none>" {
				tags = append(tags, t)
			}
		}
		out = append(out, Image{ID: s.ID, Tags: tags, Size: s.Size})
	}
	return out, nil
}

func (e *engine) Close() error { return e.c.Close() }

func notFound(err error) error {
	if err != nil && client.IsErrNotFound(err) {
		return errors.Wrap(ErrNoSuchContainer, err.Error())
	}
	return err
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
