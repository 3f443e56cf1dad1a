package buildwatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/concourse/flag/v2"

	"github.com/winston-ci/buildwatch/api"
)

// Config is supplied by the host's configuration loader. The struct is
// go-flags taggable so a host can splice it straight into its own parser.
type Config struct {
	Server flag.URL `long:"server" description:"Base URL of the build server."`

	Team string `long:"team" description:"Team (folder) containing the configured jobs."`

	Project string `long:"project" description:"Job name to poll. Multiple jobs may be separated by '|'."`

	JobFilter string `long:"job-filter" description:"Regular expression limiting which of the configured job names are polled."`
}

// TargetID is the adapter's identity for host-side deduplication: a plain
// value with structural equality.
type TargetID struct {
	Server  string
	Team    string
	Project string
}

func (id TargetID) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Server, id.Team, id.Project)
}

func (c Config) TargetID() TargetID {
	return TargetID{
		Server:  c.serverString(),
		Team:    c.Team,
		Project: c.Project,
	}
}

func (c Config) serverString() string {
	if c.Server.URL == nil {
		return ""
	}

	return strings.TrimSuffix(c.Server.URL.String(), "/")
}

func (c Config) jobNames() []string {
	var names []string
	for _, name := range strings.Split(c.Project, "|") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// targets resolves the configured job names, filtered by the job-filter
// expression, into build targets in configuration order. Job base URLs follow
// the server's folder convention: <server>/job/<team>/job/<name>.
func (c Config) targets(filter *regexp.Regexp) []api.BuildTarget {
	server := c.serverString()

	var targets []api.BuildTarget
	for _, name := range c.jobNames() {
		if !filter.MatchString(name) {
			continue
		}

		targets = append(targets, api.BuildTarget{
			Name: name,
			URL:  fmt.Sprintf("%s/job/%s/job/%s", server, c.Team, name),
		})
	}

	return targets
}
