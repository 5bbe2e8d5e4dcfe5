package service

import (
	"strings"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/utils/apierror"
)

// OmbudsmanUnit is a Hospital das Clínicas unit and its ombudsman contact.
type OmbudsmanUnit struct {
	ID              string `json:"id"`
	Nome            string `json:"nome"`
	Sigla           string `json:"sigla"`
	Telefone        string `json:"telefone"`
	Ouvidor         string `json:"ouvidor"`
	OuvidorSuplente string `json:"ouvidorSuplente,omitempty"`
	Email           string `json:"email"`
}

var ombudsmanUnits = []OmbudsmanUnit{
	{ID: "ichc", Nome: "Instituto Central e PAMB", Sigla: "ICHC", Telefone: "(11) 2661-7176", Ouvidor: "Maria Madalena do Nascimento Pereira", Email: "ouvidoria.ichc@hc.fm.usp.br"},
	{ID: "icr", Nome: "Instituto da Criança", Sigla: "ICr", Telefone: "(11) 2661-8701", Ouvidor: "Lucimara Silva", OuvidorSuplente: "Luciene Tavares Cezário Ramos", Email: "ouvidoria.icr@hc.fm.usp.br"},
	{ID: "inrad", Nome: "Instituto de Radiologia", Sigla: "InRad", Telefone: "(11) 2661-7556", Ouvidor: "Fernanda Gomes dos Santos", Email: "ouvidoria.inrad@hc.fm.usp.br"},
	{ID: "incor", Nome: "Instituto do Coração", Sigla: "InCor", Telefone: "(11) 2661-5369", Ouvidor: "Dra. Claudia Regina Haponczuk de Lemos", Email: "ouvidoria@incor.usp.br"},
	{ID: "ipq", Nome: "Instituto de Psiquiatria", Sigla: "IPQ", Telefone: "(11) 2661-6707", Ouvidor: "Vinicius Alves Ribeiro", OuvidorSuplente: "Roselene Rodrigues Marques da Silva", Email: "ouvidoria.ipq@hc.fm.usp.br"},
	{ID: "iot", Nome: "Instituto de Ortopedia e Traumatologia", Sigla: "IOT", Telefone: "(11) 2661-6951", Ouvidor: "Rosemeire Silveira", OuvidorSuplente: "Marcia Aparecida Rosa", Email: "ouvidoria.iot@hc.fm.usp.br"},
	{ID: "imrea-vm", Nome: "Instituto de Reabilitação - Vila Mariana", Sigla: "IMREA Vila Mariana", Telefone: "(11) 5180-7831", Ouvidor: "Gracinda Rodrigues Tsukimoto", OuvidorSuplente: "Rodrigo Agustini Sanches", Email: "ouvidoria.vlmariana.imrea@hc.fm.usp.br"},
	{ID: "imrea-um", Nome: "Instituto de Reabilitação - Umarizal", Sigla: "IMREA Umarizal", Telefone: "(11) 5841-7414", Ouvidor: "Antonia Lourivania Pires Sandri", OuvidorSuplente: "Lilian dos Santos da Silva Munhos", Email: "ouvidoria.umarizal.imrea@hc.fm.usp.br"},
	{ID: "imrea-lapa", Nome: "Instituto de Reabilitação - Lapa", Sigla: "IMREA Lapa", Telefone: "(11) 3803-4600 / 3873-6760", Ouvidor: "Landa Aparecida Santos Santiago", OuvidorSuplente: "Grazieli Nascimento Fagundes", Email: "ouvidoria.lapa.imrea@hc.fm.usp.br"},
	{ID: "imrea-cli", Nome: "Instituto de Reabilitação - Clínicas", Sigla: "IMREA Clínicas", Telefone: "(11) 2661-7557", Ouvidor: "Téssia da Costa Figueiredo", OuvidorSuplente: "Ana Paula Carvalho Flor", Email: "imrea.ouvidoria.cli@hc.fm.usp.br"},
	{ID: "lim", Nome: "Laboratórios de Investigação Médica", Sigla: "LIM", Telefone: "(11) 3061-7271 / 3061-7329", Ouvidor: "Não especificado", Email: "ouvidoria.lims@hc.fm.usp.br"},
	{ID: "icesp", Nome: "Instituto do Câncer do Estado de São Paulo", Sigla: "ICESP", Telefone: "(11) 3893-2048 / 3893-2054", Ouvidor: "Monica Torihara Kinshoku", OuvidorSuplente: "Ana Cristina de Araujo Dias", Email: "ouvidoria.icesp@hc.fm.usp.br"},
	{ID: "iper", Nome: "Instituto Perdizes", Sigla: "IPER", Telefone: "(11) 3803-2849", Ouvidor: "Rogério da Silva Trigueiro", OuvidorSuplente: "Roberto Sena Constantino", Email: "ouvidoria.iper@hc.fm.usp.br"},
}

type DefaultDirectoryService struct {
	Validate FormValidator
}

func NewDirectoryService(validate FormValidator) *DefaultDirectoryService {
	return &DefaultDirectoryService{Validate: validate}
}

// SearchUnits matches the term, case-insensitively, against the unit name
// or acronym. An empty term lists every unit.
func (d *DefaultDirectoryService) SearchUnits(req *forms.DirectorySearch) ([]OmbudsmanUnit, apierror.ErrorResponse) {
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	term := strings.ToLower(req.Term)
	units := make([]OmbudsmanUnit, 0, len(ombudsmanUnits))
	for _, unit := range ombudsmanUnits {
		if strings.Contains(strings.ToLower(unit.Nome), term) || strings.Contains(strings.ToLower(unit.Sigla), term) {
			units = append(units, unit)
		}
	}
	return units, nil
}
