package services

import "github.com/devops-actions/load-available-actions/internal/core/domain"

// Dedupe keeps the first item for every key, preserving order.
func Dedupe[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

type repoKey struct {
	first  string
	second string
}

// DedupeCandidates drops candidates pointing at a file already listed.
func DedupeCandidates(candidates []domain.Candidate) []domain.Candidate {
	return Dedupe(candidates, func(c domain.Candidate) string { return c.Key() })
}

// DedupeActions keeps one action per (name, repo) pair.
func DedupeActions(actions []domain.ActionRecord) []domain.ActionRecord {
	return Dedupe(actions, func(a domain.ActionRecord) repoKey {
		return repoKey{first: a.Name, second: a.Owner + "/" + a.Repo}
	})
}

// DedupeWorkflows keeps one workflow per (repo, path) pair.
func DedupeWorkflows(workflows []domain.WorkflowRecord) []domain.WorkflowRecord {
	return Dedupe(workflows, func(w domain.WorkflowRecord) repoKey {
		return repoKey{first: w.Owner + "/" + w.Repo, second: w.Path}
	})
}
