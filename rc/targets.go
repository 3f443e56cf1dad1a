package rc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

var ErrNoTargetSpecified = errors.New("no target specified")

type UnknownTargetError struct {
	TargetName TargetName
}

func (err UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target: %s", err.TargetName)
}

type TargetName string

// TargetProps is one saved build-server target: where it lives and the token
// to present to it. The token is opaque; the fetcher only forwards it.
type TargetProps struct {
	API      string       `yaml:"api"`
	TeamName string       `yaml:"team"`
	Project  string       `yaml:"project,omitempty"`
	Token    *TargetToken `yaml:"token,omitempty"`
}

type TargetToken struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type targetDetailsYAML struct {
	Targets map[TargetName]TargetProps `yaml:"targets"`
}

func SaveTarget(
	targetName TargetName,
	api string,
	teamName string,
	project string,
	token *TargetToken,
) error {
	targets, err := loadTargets()
	if err != nil {
		return err
	}

	newInfo := targets.Targets[targetName]
	newInfo.API = api
	newInfo.TeamName = teamName
	newInfo.Project = project
	newInfo.Token = token

	targets.Targets[targetName] = newInfo

	return writeTargets(rcPath(), targets)
}

func SelectTarget(selectedTarget TargetName) (TargetProps, error) {
	if selectedTarget == "" {
		return TargetProps{}, ErrNoTargetSpecified
	}

	targets, err := loadTargets()
	if err != nil {
		return TargetProps{}, err
	}

	target, ok := targets.Targets[selectedTarget]
	if !ok {
		return TargetProps{}, UnknownTargetError{selectedTarget}
	}

	return target, nil
}

func rcPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic("could not detect home directory for .buildwatchrc")
	}

	return filepath.Join(home, ".buildwatchrc")
}

func loadTargets() (targetDetailsYAML, error) {
	details := targetDetailsYAML{
		Targets: map[TargetName]TargetProps{},
	}

	contents, err := os.ReadFile(rcPath())
	if os.IsNotExist(err) {
		return details, nil
	} else if err != nil {
		return targetDetailsYAML{}, err
	}

	err = yaml.Unmarshal(contents, &details)
	if err != nil {
		return targetDetailsYAML{}, err
	}

	if details.Targets == nil {
		details.Targets = map[TargetName]TargetProps{}
	}

	return details, nil
}

func writeTargets(path string, details targetDetailsYAML) error {
	yamlBytes, err := yaml.Marshal(details)
	if err != nil {
		return err
	}

	return os.WriteFile(path, yamlBytes, 0600)
}
