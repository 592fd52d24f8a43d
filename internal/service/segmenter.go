// internal/service/segmenter.go
package service

import (
	"context"
	"sort"

	"github.com/wishsend/wishsend-backend/internal/model"
	"github.com/wishsend/wishsend-backend/internal/repository"
)

// ContactEngagement pairs a contact with its aggregate open count from the
// campaign's original send.
type ContactEngagement struct {
	Contact   *model.Contact `json:"contact"`
	OpenCount int            `json:"open_count"`
	Qualifies bool           `json:"qualifies"`
	Excluded  bool           `json:"excluded"`
	Reason    string         `json:"exclusion_reason,omitempty"`
}

// Selection is the ephemeral working state of a follow-up audience: the
// threshold partition plus manual include/exclude overrides. Nothing here is
// durable until Snapshot persists it for a concrete follow-up.
type Selection struct {
	CampaignID  string
	Threshold   int
	engagements []*ContactEngagement
	excluded    map[string]string // contact id -> reason
}

// Segmenter derives the engagement-qualified audience for a follow-up from
// the open aggregates already materialized on the email logs. The threshold
// decision never re-scans the open event rows.
type Segmenter struct {
	ContactRepo repository.ContactRepositoryInterface
	LogRepo     repository.EmailLogRepositoryInterface
	Exclusions  repository.ExclusionRepositoryInterface
}

func NewSegmenter(
	contactRepo repository.ContactRepositoryInterface,
	logRepo repository.EmailLogRepositoryInterface,
	exclusions repository.ExclusionRepositoryInterface,
) *Segmenter {
	return &Segmenter{ContactRepo: contactRepo, LogRepo: logRepo, Exclusions: exclusions}
}

// Segment partitions the campaign's contacts by open count against the
// threshold. Only original-send logs feed the counts; a contact with no log
// at all counts as zero opens. The result is sorted most-engaged first.
// Re-running with a different threshold recomputes from scratch and carries
// no previous manual exclusions.
func (s *Segmenter) Segment(ctx context.Context, campaignID string, threshold int) (*Selection, error) {
	contacts, err := s.ContactRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	counts, err := s.LogRepo.OpenCountsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		CampaignID: campaignID,
		Threshold:  threshold,
		excluded:   map[string]string{},
	}
	for _, c := range contacts {
		count := counts[c.ID]
		sel.engagements = append(sel.engagements, &ContactEngagement{
			Contact:   c,
			OpenCount: count,
			Qualifies: count >= threshold,
		})
	}
	sort.SliceStable(sel.engagements, func(i, j int) bool {
		return sel.engagements[i].OpenCount > sel.engagements[j].OpenCount
	})
	return sel, nil
}

// Exclude removes a contact from the qualifying set regardless of its open
// count and records the reason.
func (sel *Selection) Exclude(contactID, reason string) {
	if reason == "" {
		reason = "Manually excluded"
	}
	sel.excluded[contactID] = reason
	for _, e := range sel.engagements {
		if e.Contact.ID == contactID {
			e.Excluded = true
			e.Reason = reason
		}
	}
}

// Include reverses a manual exclusion.
func (sel *Selection) Include(contactID string) {
	delete(sel.excluded, contactID)
	for _, e := range sel.engagements {
		if e.Contact.ID == contactID {
			e.Excluded = false
			e.Reason = ""
		}
	}
}

// Engagements returns the full partition for rendering, most-engaged first.
func (sel *Selection) Engagements() []*ContactEngagement {
	return sel.engagements
}

// Qualifying returns the audience for a follow-up run: threshold-qualifying
// contacts minus manual exclusions.
func (sel *Selection) Qualifying() []*model.Contact {
	var out []*model.Contact
	for _, e := range sel.engagements {
		if e.Qualifies && !e.Excluded {
			out = append(out, e.Contact)
		}
	}
	return out
}

// SelectedCount is the size of the qualifying-minus-excluded audience.
func (sel *Selection) SelectedCount() int { return len(sel.Qualifying()) }

// ExcludedCount is the number of manual exclusions in force.
func (sel *Selection) ExcludedCount() int { return len(sel.excluded) }

// Snapshot persists the selection's exclusions as audit rows for the given
// follow-up. Called at follow-up-send time, not when the user toggles.
func (s *Segmenter) Snapshot(ctx context.Context, followUpID string, sel *Selection) error {
	var rows []*model.ContactExclusion
	for _, e := range sel.engagements {
		if reason, ok := sel.excluded[e.Contact.ID]; ok {
			rows = append(rows, &model.ContactExclusion{
				FollowUpCampaignID: followUpID,
				ContactID:          e.Contact.ID,
				Reason:             reason,
			})
		}
	}
	return s.Exclusions.CreateMany(ctx, rows)
}
