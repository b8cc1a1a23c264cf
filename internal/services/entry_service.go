package services

import (
	"context"
	"fmt"

	"financas/internal/core"
	"financas/internal/docstore"
	"financas/internal/log"
)

// EntryService runs entry CRUD against whichever document store is configured.
type EntryService struct {
	store  docstore.Store
	logger *log.Logger
}

func NewEntryService(store docstore.Store, logger *log.Logger) *EntryService {
	if logger == nil {
		logger = log.Discard()
	}
	return &EntryService{
		store:  store,
		logger: logger.WithComponent(log.ComponentEntries),
	}
}

// events logs through the request logger when ctx carries one, so request
// ids reach entry and store events.
func (s *EntryService) events(ctx context.Context) *log.StructuredLogger {
	return log.NewStructuredLogger(log.FromContextOr(ctx, s.logger))
}

// CreateIncome validates raw and stores only the known income fields.
func (s *EntryService) CreateIncome(ctx context.Context, raw core.Fields) (core.Document, error) {
	income, err := core.NewIncome(raw)
	if err != nil {
		log.FromContextOr(ctx, s.logger).WithComponent(log.ComponentEntries).WarnContext(ctx, "Income rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldCollection, core.Incomes.String(),
			log.FieldError, err)
		return core.Document{}, err
	}
	return s.Create(ctx, core.Incomes, income.Fields())
}

// Create stores fields as a new document. The returned document carries the
// assigned id and the fields as given, minus any "id" key.
func (s *EntryService) Create(ctx context.Context, c core.Collection, fields core.Fields) (core.Document, error) {
	if err := c.Validate(); err != nil {
		return core.Document{}, err
	}
	clean := fields.Clone()
	id, err := s.store.Set(ctx, c.String(), "", clean)
	if err != nil {
		s.events(ctx).LogError(ctx, "Failed to create entry", err, log.ComponentStorage, log.OpCreate,
			log.NewFields().WithEntry(c.String(), ""))
		return core.Document{}, fmt.Errorf("create %s entry: %w", c, err)
	}
	s.events(ctx).LogEntryChanged(ctx, log.OpCreate, c.String(), id)
	return core.Document{ID: id, Fields: clean}, nil
}

// List returns the documents of c matching every non-empty predicate of lf.
func (s *EntryService) List(ctx context.Context, c core.Collection, lf core.ListFilter) ([]core.Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	filters := lf.Filters(c)
	docs, err := s.store.Get(ctx, c.String(), filters...)
	if err != nil {
		s.events(ctx).LogError(ctx, "Failed to list entries", err, log.ComponentStorage, log.OpList,
			log.NewFields().WithEntry(c.String(), ""))
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	if docs == nil {
		docs = []core.Document{}
	}
	log.FromContextOr(ctx, s.logger).WithComponent(log.ComponentEntries).DebugContext(ctx, "Entries listed",
		log.FieldOperation, log.OpList,
		log.FieldCollection, c.String(),
		log.FieldFilters, describeFilters(filters),
		log.FieldCount, len(docs))
	return docs, nil
}

// Update merges partial into the stored document and returns the result.
func (s *EntryService) Update(ctx context.Context, c core.Collection, id string, partial core.Fields) (core.Document, error) {
	if err := c.Validate(); err != nil {
		return core.Document{}, err
	}
	merged, err := s.store.Update(ctx, c.String(), id, partial.Clone())
	if err != nil {
		s.events(ctx).LogError(ctx, "Failed to update entry", err, log.ComponentStorage, log.OpUpdate,
			log.NewFields().WithEntry(c.String(), id))
		return core.Document{}, fmt.Errorf("update %s entry: %w", c, err)
	}
	s.events(ctx).LogEntryChanged(ctx, log.OpUpdate, c.String(), id)
	return core.Document{ID: id, Fields: merged}, nil
}

func (s *EntryService) Delete(ctx context.Context, c core.Collection, id string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, c.String(), id); err != nil {
		s.events(ctx).LogError(ctx, "Failed to delete entry", err, log.ComponentStorage, log.OpDelete,
			log.NewFields().WithEntry(c.String(), id))
		return fmt.Errorf("delete %s entry: %w", c, err)
	}
	s.events(ctx).LogEntryChanged(ctx, log.OpDelete, c.String(), id)
	return nil
}

func describeFilters(filters []core.Filter) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Field+" "+string(f.Op)+" "+f.Value)
	}
	return out
}
