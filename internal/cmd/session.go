package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/types"
)

// candidateForProfile returns the freshest session file of a profile, which
// is the first candidate in recovery order.
func candidateForProfile(profiles []types.Profile, name string) (types.SessionCandidate, error) {
	p, err := firefox.FindProfile(profiles, name)
	if err != nil {
		return types.SessionCandidate{}, err
	}
	cands := firefox.SessionCandidates(p)
	if len(cands) == 0 {
		return types.SessionCandidate{}, fmt.Errorf("profile %q has no session files", p.Name)
	}
	return cands[0], nil
}

// resolveInput returns the session file named on the command line or, when
// there is none, the one of the configured profile.
func (a *app) resolveInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return "", fmt.Errorf("discover profiles: %w", err)
	}
	cand, err := candidateForProfile(profiles, a.cfg.Profile)
	if err != nil {
		return "", err
	}
	return cand.Path, nil
}

// loadSession reads and parses path, writing status lines to w when it is
// not nil.
func (a *app) loadSession(ctx context.Context, path string, w io.Writer) (*pipeline.FileRecord, types.AllTabGroups, error) {
	emit := statusPrinter(w)
	emit(pipeline.Message{Status: pipeline.StatusReading})
	rec, err := pipeline.Load(path)
	if err != nil {
		return nil, types.AllTabGroups{}, fmt.Errorf("%s: %w", pipeline.StatusReadFailed, err)
	}
	groups, err := pipeline.Drive(ctx, rec, a.pipelineOptions(), emit)
	if err != nil {
		return nil, types.AllTabGroups{}, err
	}
	return rec, groups, nil
}

// statusPrinter prints progress statuses. Failures are left to the returned
// error.
func statusPrinter(w io.Writer) func(pipeline.Message) {
	return func(m pipeline.Message) {
		if w != nil && m.Status != "" && !m.Failed() {
			fmt.Fprintln(w, m.Status)
		}
	}
}
