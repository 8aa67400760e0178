package store

import "github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"

func removeFirstConflict(in []domain.Conflict, id string) []domain.Conflict {
	i := domain.IndexOfConflict(in, id)
	if i < 0 {
		return in
	}
	out := make([]domain.Conflict, 0, len(in)-1)
	out = append(out, in[:i]...)
	return append(out, in[i+1:]...)
}

func removeFirstSuggestion(in []domain.Suggestion, id string) []domain.Suggestion {
	i := domain.IndexOfSuggestion(in, id)
	if i < 0 {
		return in
	}
	out := make([]domain.Suggestion, 0, len(in)-1)
	out = append(out, in[:i]...)
	return append(out, in[i+1:]...)
}

func removeAllConflicts(in []domain.Conflict, id string) []domain.Conflict {
	if domain.IndexOfConflict(in, id) < 0 {
		return in
	}
	out := make([]domain.Conflict, 0, len(in))
	for _, c := range in {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func removeAllSuggestions(in []domain.Suggestion, id string) []domain.Suggestion {
	if domain.IndexOfSuggestion(in, id) < 0 {
		return in
	}
	out := make([]domain.Suggestion, 0, len(in))
	for _, s := range in {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
