package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pet-shelter/internal/domain/pets"
)

// errNotApplied: el dispatcher respondió pero no hubo cambios (validación,
// id inexistente). El mensaje ya se imprimió.
var errNotApplied = errors.New("no changes applied")

func newListCmd(f *rootFlags) *cobra.Command {
	var sortOrder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las mascotas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := e.pets.Query(cmd.Context(), pets.CollectionURI, pets.Selection{
				Projection: pets.AllColumns,
				SortOrder:  sortOrder,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBREED\tGENDER\tWEIGHT")
			for _, row := range c.Rows {
				p := pets.PetFromRow(row)
				breed := "-"
				if p.Breed != nil {
					breed = *p.Breed
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, breed, p.Gender, p.Weight)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sortOrder, "sort", pets.ColumnID+" ASC", "orden, ej: \"name DESC\"")
	return cmd
}

// petFlags solo carga en Values los flags que el usuario pasó: así el
// dispatcher valida exactamente lo que se quiere guardar.
type petFlags struct {
	name   string
	breed  string
	gender string
	weight string
}

func (pf *petFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.name, "name", "", "nombre")
	cmd.Flags().StringVar(&pf.breed, "breed", "", "raza")
	cmd.Flags().StringVar(&pf.gender, "gender", "", "unknown | male | female (o 0, 1, 2)")
	cmd.Flags().StringVar(&pf.weight, "weight", "", "peso en kg")
}

func (pf *petFlags) values(cmd *cobra.Command) pets.Values {
	v := pets.Values{}
	if cmd.Flags().Changed("name") {
		v[pets.ColumnName] = pf.name
	}
	if cmd.Flags().Changed("breed") {
		v[pets.ColumnBreed] = pf.breed
	}
	if cmd.Flags().Changed("gender") {
		v[pets.ColumnGender] = parseGender(pf.gender)
	}
	if cmd.Flags().Changed("weight") {
		v[pets.ColumnWeight] = pf.weight
	}
	return v
}

// parseGender acepta el nombre o el número; lo demás pasa tal cual y lo
// rechaza la validación.
func parseGender(s string) any {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown":
		return pets.GenderUnknown
	case "male":
		return pets.GenderMale
	case "female":
		return pets.GenderFemale
	default:
		return s
	}
}

func newAddCmd(f *rootFlags) *cobra.Command {
	pf := &petFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Crea una mascota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInsert(cmd, f, pf.values(cmd))
		},
	}
	pf.register(cmd)
	return cmd
}

func newDummyCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dummy",
		Short: "Inserta la mascota de ejemplo (Toto, Terrier)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInsert(cmd, f, pets.DummyPet().Values())
		},
	}
}

func runInsert(cmd *cobra.Command, f *rootFlags, values pets.Values) error {
	e, err := f.open(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.pets.Insert(cmd.Context(), pets.CollectionURI, values)
	if err != nil {
		return err
	}
	if !res.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), res.Invalid.Message)
		return fmt.Errorf("%w: %v", errNotApplied, res.Invalid)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pets.MsgSaved(res.ID))
	return nil
}

func newUpdateCmd(f *rootFlags) *cobra.Command {
	pf := &petFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza solo los campos indicados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.pets.Update(cmd.Context(), pets.ItemURI(id), pf.values(cmd), pets.Selection{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case !res.OK():
				fmt.Fprintln(out, res.Invalid.Message)
				return fmt.Errorf("%w: %v", errNotApplied, res.Invalid)
			case res.Rows == 0:
				fmt.Fprintln(out, pets.MsgUpdateFailed)
				return errNotApplied
			}
			fmt.Fprintln(out, pets.MsgUpdated)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newDeleteCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Borra una mascota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			n, err := e.pets.Delete(cmd.Context(), pets.ItemURI(id), pets.Selection{})
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), pets.MsgDeleteFailed)
				return errNotApplied
			}
			fmt.Fprintln(cmd.OutOrStdout(), pets.MsgDeleted)
			return nil
		},
	}
}

func newDeleteAllCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Borra todas las mascotas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			n, err := e.pets.Delete(cmd.Context(), pets.CollectionURI, pets.Selection{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", pets.MsgAllDeleted, n)
			return nil
		},
	}
}

func newTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <uri>",
		Short: "Muestra el tipo MIME-like de un identificador",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No toca la base: alcanza con la tabla de rutas.
			d := pets.NewDispatcher(nil, pets.DefaultRoutes())
			t, err := d.Type(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid pet id %q", s)
	}
	return id, nil
}
