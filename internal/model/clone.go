package model

// Clone returns a copy of the session safe to hand across a goroutine
// boundary. Sections are immutable after generation and are shared; the
// mutable maps are copied.
func (ts *TestSession) Clone() TestSession {
	out := *ts

	out.Answers = make(AnswerMap, len(ts.Answers))
	for si, m := range ts.Answers {
		qm := make(map[int]Answer, len(m))
		for qi, a := range m {
			qm[qi] = a
		}
		out.Answers[si] = qm
	}

	out.RemainingSeconds = make(map[int]int, len(ts.RemainingSeconds))
	for si, sec := range ts.RemainingSeconds {
		out.RemainingSeconds[si] = sec
	}

	out.LockedSections = make(map[int]bool, len(ts.LockedSections))
	for si, v := range ts.LockedSections {
		out.LockedSections[si] = v
	}

	if ts.Analysis != nil {
		out.Analysis = make(map[int]SectionAnalysis, len(ts.Analysis))
		for si, a := range ts.Analysis {
			out.Analysis[si] = a
		}
	}

	if ts.FinalScore != nil {
		fs := *ts.FinalScore
		out.FinalScore = &fs
	}
	if ts.FinishedAt != nil {
		t := *ts.FinishedAt
		out.FinishedAt = &t
	}

	return out
}
