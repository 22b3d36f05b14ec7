package filing

import (
	"context"
	"fmt"
	"log/slog"
)

// Placement records one document placed (or, in dry-run mode, one that
// would have been placed) for a message.
type Placement struct {
	TypeID string
	// Name is the filename the document was placed under.
	Name string
	// File is the created file handle; nil in dry-run mode.
	File File
	// Number is the sequence number for numbered slots, 0 for plain slots.
	Number int
	Driver bool
}

// MessageResult is the outcome of classifying one message. A message is
// "processed" (its thread eligible for mark-read) iff it has at least one
// placement.
type MessageResult struct {
	Placements []Placement
	// DriverNumber is the sequence number allocated by this message's
	// driver document, or 0 if no driver document was claimed.
	DriverNumber int
}

// Classifier assigns a message's PDF attachments to document types in two
// passes: first the driver type, which allocates the daily sequence number,
// then all remaining types, with the follower type synchronized to the
// driver's number when both arrived in the same message.
type Classifier struct {
	rules  *RuleTable
	rec    *Reconciler
	log    *slog.Logger
	dryRun bool
}

// NewClassifier returns a Classifier. With dryRun set, classification runs
// normally but nothing is downloaded or written.
func NewClassifier(rules *RuleTable, rec *Reconciler, log *slog.Logger, dryRun bool) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{rules: rules, rec: rec, log: log, dryRun: dryRun}
}

// ClassifyMessage runs the two-pass assignment for one message. allocate is
// supplied by the coordinator; it performs the pending day rollover if any,
// then increments and persists the daily sequence counter, returning the
// number for this message's driver document.
func (c *Classifier) ClassifyMessage(ctx context.Context, msg Message, root Folder, folders *folderCache, allocate func(context.Context) (int, error)) (*MessageResult, error) {
	eligible := c.eligibleAttachments(msg)
	if len(eligible) == 0 {
		return &MessageResult{}, nil
	}

	res := &MessageResult{}
	consumed := make(map[string]bool) // typeIDs assigned this message
	claimed := make(map[int]bool)     // indexes into eligible

	// Pass 1: the driver type only. The first attachment matching a driver
	// keyword claims it and allocates the sequence number.
	driver := c.rules.Driver()
	for i, att := range eligible {
		if !driver.MatchesName(att.Name()) {
			continue
		}
		n, err := allocate(ctx)
		if err != nil {
			return nil, err
		}
		name := driver.NumberedSlot(n)
		f, err := c.placeNumbered(ctx, root, name, att)
		if err != nil {
			return nil, err
		}
		res.DriverNumber = n
		res.Placements = append(res.Placements, Placement{
			TypeID: driver.TypeID,
			Name:   name,
			File:   f,
			Number: n,
			Driver: true,
		})
		consumed[driver.TypeID] = true
		claimed[i] = true
		break
	}

	// Pass 2: every other type, in declaration order.
	for _, rule := range c.rules.Rules() {
		if rule.Driver || consumed[rule.TypeID] {
			continue
		}
		for i, att := range eligible {
			if claimed[i] || !rule.MatchesName(att.Name()) {
				continue
			}
			p, err := c.placeSecondary(ctx, rule, att, root, folders, res.DriverNumber)
			if err != nil {
				return nil, err
			}
			res.Placements = append(res.Placements, p)
			consumed[rule.TypeID] = true
			claimed[i] = true
			break
		}
	}

	return res, nil
}

// eligibleAttachments filters the message's attachments down to PDFs that
// trip no exclusion term.
func (c *Classifier) eligibleAttachments(msg Message) []Attachment {
	var out []Attachment
	for _, att := range msg.Attachments() {
		if att.ContentType() != "application/pdf" {
			continue
		}
		if c.rules.Excluded(att.Name(), msg.Subject(), msg.BodyText()) {
			c.log.Debug("attachment excluded",
				"operation", "classify",
				"filename", att.Name(),
				"message", msg.ID())
			continue
		}
		out = append(out, att)
	}
	return out
}

// placeNumbered creates a numbered canonical file directly in root.
// Numbered slots are unique per day by construction, so there is nothing
// to archive first.
func (c *Classifier) placeNumbered(ctx context.Context, root Folder, name string, att Attachment) (File, error) {
	if c.dryRun {
		c.log.Info("dry run: would place", "operation", "classify", "filename", name, "source", att.Name())
		return nil, nil
	}
	content, err := att.Bytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", att.Name(), err)
	}
	f, err := root.CreateFile(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("placing %s: %w", name, err)
	}
	return f, nil
}

// placeSecondary places a non-driver document. A follower type with a
// driver number from this message takes the matching numbered slot with no
// archival; everything else goes through promote-and-archive.
func (c *Classifier) placeSecondary(ctx context.Context, rule *Rule, att Attachment, root Folder, folders *folderCache, driverNumber int) (Placement, error) {
	if rule.SyncToDriver && driverNumber > 0 {
		name := rule.NumberedSlot(driverNumber)
		f, err := c.placeNumbered(ctx, root, name, att)
		if err != nil {
			return Placement{}, err
		}
		return Placement{TypeID: rule.TypeID, Name: name, File: f, Number: driverNumber}, nil
	}

	if c.dryRun {
		c.log.Info("dry run: would place", "operation", "classify", "filename", rule.TypeID, "source", att.Name())
		return Placement{TypeID: rule.TypeID, Name: rule.TypeID}, nil
	}

	content, err := att.Bytes(ctx)
	if err != nil {
		return Placement{}, fmt.Errorf("downloading %s: %w", att.Name(), err)
	}
	archive, err := folders.ensure(ctx, rule.ArchiveFolder)
	if err != nil {
		return Placement{}, err
	}
	f, err := c.rec.Place(ctx, root, archive, rule.TypeID, content)
	if err != nil {
		return Placement{}, err
	}
	return Placement{TypeID: rule.TypeID, Name: rule.TypeID, File: f}, nil
}
