package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

func uniqueErr(constraint string) error {
	return fmt.Errorf("%w (%s)", repository.ErrUniqueViolation, constraint)
}

func fkErr(constraint string) error {
	return fmt.Errorf("%w (%s)", repository.ErrForeignKeyViolation, constraint)
}

// plots

type plots struct{ s *Store }

func (r plots) Create(_ context.Context, p *models.Plot) error {
	st, err := r.s.lock("plots.create")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	if p.ID == "" {
		p.ID = repository.NewID()
	}
	if p.Codigo != nil {
		for _, other := range st.plots {
			if other.Codigo != nil && *other.Codigo == *p.Codigo {
				return uniqueErr("talhoes_codigo_key")
			}
		}
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Agronomics = p.Agronomics.Clone()
	st.plots[p.ID] = stored
	return nil
}

func (r plots) FindByID(_ context.Context, id string) (*models.Plot, error) {
	st, err := r.s.lock("plots.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	p, ok := st.plots[id]
	if !ok {
		return nil, nil
	}
	p.Agronomics = p.Agronomics.Clone()
	return &p, nil
}

func (r plots) List(_ context.Context, activeOnly bool) ([]models.Plot, error) {
	st, err := r.s.lock("plots.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	all := sortedValues(st.plots, func(a, b models.Plot) bool {
		if a.Nome != b.Nome {
			return a.Nome < b.Nome
		}
		return a.ID < b.ID
	})
	out := make([]models.Plot, 0, len(all))
	for _, p := range all {
		if activeOnly && !p.Ativo {
			continue
		}
		p.Agronomics = p.Agronomics.Clone()
		out = append(out, p)
	}
	return out, nil
}

func (r plots) Update(_ context.Context, p *models.Plot) (*models.Plot, error) {
	st, err := r.s.lock("plots.update")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	existing, ok := st.plots[p.ID]
	if !ok {
		return nil, nil
	}
	if p.Codigo != nil {
		for id, other := range st.plots {
			if id != p.ID && other.Codigo != nil && *other.Codigo == *p.Codigo {
				return nil, uniqueErr("talhoes_codigo_key")
			}
		}
	}
	stored := *p
	stored.Agronomics = p.Agronomics.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.now()
	st.plots[p.ID] = stored

	out := stored
	out.Agronomics = stored.Agronomics.Clone()
	return &out, nil
}

func (r plots) Delete(_ context.Context, id string) (bool, error) {
	st, err := r.s.lock("plots.delete")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	if _, ok := st.plots[id]; !ok {
		return false, nil
	}
	for _, o := range st.overlays {
		if o.TalhaoID == id {
			return false, fkErr("talhao_safra_talhao_id_fkey")
		}
	}
	for _, l := range st.loads {
		if l.TalhaoID == id {
			return false, fkErr("carregamentos_talhao_id_fkey")
		}
	}
	delete(st.plots, id)
	return true, nil
}

// seasons

type seasons struct{ s *Store }

func (r seasons) Create(_ context.Context, season *models.Season) error {
	st, err := r.s.lock("seasons.create")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	if season.ID == "" {
		season.ID = repository.NewID()
	}
	now := r.s.now()
	season.CreatedAt, season.UpdatedAt = now, now
	st.seasons[season.ID] = *season
	return nil
}

func (r seasons) FindByID(_ context.Context, id string) (*models.Season, error) {
	st, err := r.s.lock("seasons.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	season, ok := st.seasons[id]
	if !ok {
		return nil, nil
	}
	return &season, nil
}

// LockByID relies on WithTx serializing transactions.
func (r seasons) LockByID(ctx context.Context, id string) (*models.Season, error) {
	return r.FindByID(ctx, id)
}

func (r seasons) FindActive(_ context.Context) (*models.Season, error) {
	st, err := r.s.lock("seasons.active")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	var found *models.Season
	for _, season := range st.seasons {
		if !season.IsActive {
			continue
		}
		if found == nil || season.CreatedAt.After(found.CreatedAt) {
			s := season
			found = &s
		}
	}
	return found, nil
}

func (r seasons) List(_ context.Context) ([]models.Season, error) {
	st, err := r.s.lock("seasons.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	return sortedValues(st.seasons, func(a, b models.Season) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}), nil
}

func (r seasons) Update(_ context.Context, season *models.Season) (*models.Season, error) {
	st, err := r.s.lock("seasons.update")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	existing, ok := st.seasons[season.ID]
	if !ok {
		return nil, nil
	}
	stored := *season
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.now()
	st.seasons[season.ID] = stored
	return &stored, nil
}

func (r seasons) Delete(_ context.Context, id string) (bool, error) {
	st, err := r.s.lock("seasons.delete")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	if _, ok := st.seasons[id]; !ok {
		return false, nil
	}
	for _, o := range st.overlays {
		if o.SafraID == id {
			return false, fkErr("talhao_safra_safra_id_fkey")
		}
	}
	for _, l := range st.loads {
		if l.SafraID == id {
			return false, fkErr("carregamentos_safra_id_fkey")
		}
	}
	for wid, w := range st.weeks {
		if w.SafraID == id {
			delete(st.weeks, wid)
		}
	}
	delete(st.seasons, id)
	return true, nil
}

// season overlays

type overlays struct{ s *Store }

func (r overlays) Create(_ context.Context, sp *models.SeasonPlot) error {
	st, err := r.s.lock("season_plots.create")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	if _, ok := st.plots[sp.TalhaoID]; !ok {
		return fkErr("talhao_safra_talhao_id_fkey")
	}
	if _, ok := st.seasons[sp.SafraID]; !ok {
		return fkErr("talhao_safra_safra_id_fkey")
	}
	for _, o := range st.overlays {
		if o.TalhaoID == sp.TalhaoID && o.SafraID == sp.SafraID {
			return uniqueErr("talhao_safra_talhao_safra_key")
		}
	}
	if sp.ID == "" {
		sp.ID = repository.NewID()
	}
	now := r.s.now()
	sp.CreatedAt, sp.UpdatedAt = now, now
	stored := *sp
	stored.Agronomics = sp.Agronomics.Clone()
	st.overlays[sp.ID] = stored
	return nil
}

func (r overlays) FindByID(_ context.Context, id string) (*models.SeasonPlot, error) {
	st, err := r.s.lock("season_plots.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	o, ok := st.overlays[id]
	if !ok {
		return nil, nil
	}
	o.Agronomics = o.Agronomics.Clone()
	return &o, nil
}

func (r overlays) FindByPlotAndSeason(_ context.Context, plotID, seasonID string) (*models.SeasonPlot, error) {
	st, err := r.s.lock("season_plots.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	for _, o := range st.overlays {
		if o.TalhaoID == plotID && o.SafraID == seasonID {
			o.Agronomics = o.Agronomics.Clone()
			return &o, nil
		}
	}
	return nil, nil
}

func (r overlays) ListBySeason(_ context.Context, seasonID string, activeOnly bool) ([]models.SeasonPlot, error) {
	st, err := r.s.lock("season_plots.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	all := sortedValues(st.overlays, func(a, b models.SeasonPlot) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	out := []models.SeasonPlot{}
	for _, o := range all {
		if o.SafraID != seasonID || (activeOnly && !o.Ativo) {
			continue
		}
		o.Agronomics = o.Agronomics.Clone()
		out = append(out, o)
	}
	return out, nil
}

func (r overlays) CountBySeason(_ context.Context, seasonID string) (int, error) {
	st, err := r.s.lock("season_plots.count")
	if err != nil {
		return 0, err
	}
	defer r.s.unlock()

	n := 0
	for _, o := range st.overlays {
		if o.SafraID == seasonID {
			n++
		}
	}
	return n, nil
}

func (r overlays) ListViews(_ context.Context, seasonID string) ([]models.SeasonPlotView, error) {
	st, err := r.s.lock("season_plots.views")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	bySeason := map[string]models.SeasonPlot{}
	for _, o := range st.overlays {
		if o.SafraID == seasonID {
			bySeason[o.TalhaoID] = o
		}
	}

	all := sortedValues(st.plots, func(a, b models.Plot) bool {
		if a.Nome != b.Nome {
			return a.Nome < b.Nome
		}
		return a.ID < b.ID
	})
	views := make([]models.SeasonPlotView, 0, len(all))
	for _, p := range all {
		p.Agronomics = p.Agronomics.Clone()
		view := models.SeasonPlotView{Plot: p}
		if o, ok := bySeason[p.ID]; ok {
			o.Agronomics = o.Agronomics.Clone()
			view.Overlay = &o
		}
		views = append(views, view)
	}
	return views, nil
}

func (r overlays) Update(_ context.Context, sp *models.SeasonPlot) (*models.SeasonPlot, error) {
	st, err := r.s.lock("season_plots.update")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	existing, ok := st.overlays[sp.ID]
	if !ok {
		return nil, nil
	}
	existing.Agronomics = sp.Agronomics.Clone()
	existing.UpdatedAt = r.s.now()
	st.overlays[sp.ID] = existing

	out := existing
	out.Agronomics = existing.Agronomics.Clone()
	return &out, nil
}

func (r overlays) Delete(_ context.Context, id string) (bool, error) {
	st, err := r.s.lock("season_plots.delete")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	if _, ok := st.overlays[id]; !ok {
		return false, nil
	}
	delete(st.overlays, id)
	return true, nil
}

// harvest-week ledger

type weeks struct{ s *Store }

func (r weeks) InsertIfAbsent(_ context.Context, w *models.HarvestWeek) (bool, error) {
	st, err := r.s.lock("harvest_weeks.insert")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	for _, existing := range st.weeks {
		if existing.SafraID == w.SafraID && existing.SemanaAno == w.SemanaAno {
			return false, nil
		}
	}
	if w.ID == "" {
		w.ID = repository.NewID()
	}
	st.weeks[w.ID] = *w
	return true, nil
}

func (r weeks) ListBySeason(_ context.Context, seasonID string) ([]models.HarvestWeek, error) {
	st, err := r.s.lock("harvest_weeks.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	all := sortedValues(st.weeks, func(a, b models.HarvestWeek) bool { return a.SemanaAno < b.SemanaAno })
	out := []models.HarvestWeek{}
	for _, w := range all {
		if w.SafraID == seasonID {
			out = append(out, w)
		}
	}
	return out, nil
}

// loads

type loads struct{ s *Store }

func (r loads) Create(_ context.Context, l *models.Load) error {
	st, err := r.s.lock("loads.create")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	if _, ok := st.plots[l.TalhaoID]; !ok {
		return fkErr("carregamentos_talhao_id_fkey")
	}
	if _, ok := st.seasons[l.SafraID]; !ok {
		return fkErr("carregamentos_safra_id_fkey")
	}
	if l.ID == "" {
		l.ID = repository.NewID()
	}
	st.seq++
	l.Seq = st.seq
	now := r.s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	st.loads[l.ID] = *l
	return nil
}

func (r loads) FindByID(_ context.Context, id string) (*models.Load, error) {
	st, err := r.s.lock("loads.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	l, ok := st.loads[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r loads) List(_ context.Context, filter repository.LoadFilter) ([]models.Load, error) {
	st, err := r.s.lock("loads.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	all := sortedValues(st.loads, func(a, b models.Load) bool {
		if a.Data != b.Data {
			return a.Data < b.Data
		}
		return a.Seq < b.Seq
	})
	out := []models.Load{}
	for _, l := range all {
		if filter.SafraID != "" && l.SafraID != filter.SafraID {
			continue
		}
		if filter.TalhaoID != "" && l.TalhaoID != filter.TalhaoID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r loads) Update(_ context.Context, l *models.Load) (*models.Load, error) {
	st, err := r.s.lock("loads.update")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	existing, ok := st.loads[l.ID]
	if !ok {
		return nil, nil
	}
	stored := *l
	stored.Seq = existing.Seq
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.now()
	st.loads[l.ID] = stored
	return &stored, nil
}

func (r loads) Delete(_ context.Context, id string) (bool, error) {
	st, err := r.s.lock("loads.delete")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	if _, ok := st.loads[id]; !ok {
		return false, nil
	}
	delete(st.loads, id)
	return true, nil
}

func (r loads) SetRunningTotal(_ context.Context, id string, total float64) error {
	st, err := r.s.lock("loads.set_total")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	l, ok := st.loads[id]
	if !ok {
		return nil
	}
	l.TotalAcumulado = total
	st.loads[id] = l
	return nil
}

func (r loads) SumByPlot(_ context.Context, seasonID string) (map[string]float64, error) {
	st, err := r.s.lock("loads.sum")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	sums := map[string]float64{}
	for _, l := range st.loads {
		if l.SafraID == seasonID {
			sums[l.TalhaoID] += l.QteCaixa
		}
	}
	return sums, nil
}

// drivers

type drivers struct{ s *Store }

func (r drivers) FindByName(_ context.Context, name string) (*models.Driver, error) {
	st, err := r.s.lock("drivers.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	for _, d := range st.drivers {
		if d.Nome == name {
			return &d, nil
		}
	}
	return nil, nil
}

func (r drivers) InsertIfAbsent(_ context.Context, d *models.Driver) (bool, error) {
	st, err := r.s.lock("drivers.insert")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	for _, existing := range st.drivers {
		if existing.Nome == d.Nome {
			return false, nil
		}
	}
	if d.ID == "" {
		d.ID = repository.NewID()
	}
	st.drivers[d.ID] = *d
	return true, nil
}

func (r drivers) List(_ context.Context) ([]models.Driver, error) {
	st, err := r.s.lock("drivers.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	return sortedValues(st.drivers, func(a, b models.Driver) bool {
		return strings.Compare(a.Nome, b.Nome) < 0
	}), nil
}

// forecasts

type forecasts struct{ s *Store }

func (r forecasts) Upsert(_ context.Context, f *models.Forecast) error {
	st, err := r.s.lock("forecasts.upsert")
	if err != nil {
		return err
	}
	defer r.s.unlock()

	if _, ok := st.plots[f.TalhaoID]; !ok {
		return fkErr("previsoes_talhao_id_fkey")
	}
	if _, ok := st.seasons[f.SafraID]; !ok {
		return fkErr("previsoes_safra_id_fkey")
	}
	for id, existing := range st.forecasts {
		if existing.TalhaoID == f.TalhaoID && existing.SafraID == f.SafraID {
			f.ID = id
			break
		}
	}
	if f.ID == "" {
		f.ID = repository.NewID()
	}
	f.UpdatedAt = r.s.now()
	st.forecasts[f.ID] = *f
	return nil
}

func (r forecasts) FindByPlotAndSeason(_ context.Context, plotID, seasonID string) (*models.Forecast, error) {
	st, err := r.s.lock("forecasts.find")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	for _, f := range st.forecasts {
		if f.TalhaoID == plotID && f.SafraID == seasonID {
			return &f, nil
		}
	}
	return nil, nil
}

func (r forecasts) ListBySeason(_ context.Context, seasonID string) ([]models.Forecast, error) {
	st, err := r.s.lock("forecasts.list")
	if err != nil {
		return nil, err
	}
	defer r.s.unlock()

	all := sortedValues(st.forecasts, func(a, b models.Forecast) bool {
		if a.TalhaoNome != b.TalhaoNome {
			return a.TalhaoNome < b.TalhaoNome
		}
		return a.ID < b.ID
	})
	out := []models.Forecast{}
	for _, f := range all {
		if f.SafraID == seasonID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r forecasts) Delete(_ context.Context, id string) (bool, error) {
	st, err := r.s.lock("forecasts.delete")
	if err != nil {
		return false, err
	}
	defer r.s.unlock()

	if _, ok := st.forecasts[id]; !ok {
		return false, nil
	}
	delete(st.forecasts, id)
	return true, nil
}
