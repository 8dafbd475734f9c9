package webservices

import (
	"html/template"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
)

const maxDataFileBytes = 512 << 20

type AdminService struct {
	logger            *logpkg.Logger
	pathsConfig       *ownmapdal.PathsConfig
	featureStore      *ownmapdal.FeatureStore
	styleSet          *styling.StyleSet
	importQueue       *ownmapdal.ImportQueue
	routerURLBasePath string
	chi.Router
}

func NewAdminService(
	logger *logpkg.Logger,
	pathsConfig *ownmapdal.PathsConfig,
	featureStore *ownmapdal.FeatureStore,
	styleSet *styling.StyleSet,
	importQueue *ownmapdal.ImportQueue,
	routerURLBasePath string,
) *AdminService {

	as := &AdminService{logger, pathsConfig, featureStore, styleSet, importQueue, routerURLBasePath, chi.NewRouter()}

	as.Router.Use(LocalhostOnlyMiddleware(logger))
	as.Router.Get("/", as.handleGet)
	as.Router.Get("/importQueue", as.handleGetImportQueue)
	as.Router.Post("/dataFile", as.handlePostDataFile)
	as.Router.Delete("/datasets/{name}", as.handleDeleteDataset)

	return as
}

// LocalhostOnlyMiddleware rejects requests that do not come from a loopback address.
func LocalhostOnlyMiddleware(logger *logpkg.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			ip := net.ParseIP(host)
			if ip == nil || !ip.IsLoopback() {
				errorsx.HTTPError(w, logger, errorsx.Errorf("admin requests are only allowed from localhost, not %q", r.RemoteAddr), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func (as *AdminService) handlePostDataFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDataFileBytes)

	multipartFile, formData, err := r.FormFile("dataFile")
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}
	defer multipartFile.Close()

	err = as.importQueue.AddItemToQueue(multipartFile, formData.Filename)
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	as.logger.Info("queued data file %q for import", formData.Filename)
	w.WriteHeader(http.StatusAccepted)
}

func (as *AdminService) handleGetImportQueue(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, as.importQueue.GetItems())
}

func (as *AdminService) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	_, err := as.featureStore.Get(name)
	if err != nil {
		errorsx.HTTPError(w, as.logger, err, http.StatusNotFound)
		return
	}

	as.featureStore.Delete(name)
	w.WriteHeader(http.StatusNoContent)
}

func (as *AdminService) handleGet(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"RouterURLBasePath": as.routerURLBasePath,
		"Datasets":          as.featureStore.DatasetInfos(),
		"StyleIDs":          as.styleSet.GetAllStyleIDs(),
		"ImportQueueStatus": as.importQueue.GetItems(),
	}

	if as.pathsConfig != nil {
		data["StylesDirImportPath"] = as.pathsConfig.StylesDir
		data["RawDataImportPath"] = as.pathsConfig.RawDataFilesDir
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := adminTmpl.Execute(w, data)
	if err != nil {
		errorsx.HTTPError(w, as.logger, errorsx.Wrap(err), http.StatusInternalServerError)
		return
	}
}

var adminTmpl = template.Must(template.New("admin/index.html").Parse(adminTemplate))

const adminTemplate = `
<html>
	<head>
		<title>admin</title>
		<style type="text/css">
		div {
			margin: 10px;
			border: 1px solid grey;
			padding: 10px;
		}
		</style>
		<script>
		function submitDataFile(formEl) {
			const formData = new FormData(formEl);

			fetch('/{{.RouterURLBasePath}}/dataFile', {method: 'POST', body: formData})
				.then(resp => {
					if (!resp.ok) {
						return resp.text().then(text => { throw new Error(text); });
					}
					alert('successfully uploaded data file. File is queued for import.');
				})
				.catch(e => {
					console.error(e);
					alert('failed to upload data file: ' + e);
				});
		}
		</script>
	</head>
	<body>
		<h1>Admin settings</h1>
		<div>
			<h2>Loaded datasets</h2>
			{{range .Datasets}}
				<p>
					{{.Name}}: {{.FeatureCount}} features, updated {{.UpdatedAt.Format "2006-01-02 15:04:05"}}
				</p>
			{{else}}
				<p>No datasets loaded. Run a query or upload a data file.</p>
			{{end}}
		</div>

		<div>
			<h2>Styles</h2>
			{{range .StyleIDs}}
				<p><a href="/api/styles/{{.}}">{{.}}</a></p>
			{{end}}
			<p>MapCSS files in <pre>{{.StylesDirImportPath}}</pre> are loaded automatically.</p>
		</div>

		<div>
			<h2>Import Queue:</h2>
			<sub>Refresh page for updates</sub>
			{{range .ImportQueueStatus}}
				<h3>{{.RawDataFilePath}}</h3>
				<p>Status: {{.Status}}</p>
				<p>% progress: {{printf "%.2f%%" .ProgressPercent}}</p>
				<p>Time in progress: {{.TimeInProgress}}</p>
				{{if .ErrorMessage}}<p>Error: {{.ErrorMessage}}</p>{{end}}
			{{end}}
		</div>

		<div>
			<h2>Map Data</h2>
			<p>Upload an OpenStreetMap extract (.osm, .osm.pbf) or a GeoJSON file to add it as a dataset.</p>
			<form action="javascript:;" method="POST" enctype="multipart/form-data" onsubmit="submitDataFile(this)" name="dataUploadForm">
				<p>The file will be copied into <pre>{{.RawDataImportPath}}</pre></p>
				<p>
					<label>
						Data file
						<input type="file" name="dataFile" />
					</label>
				</p>
				<input type="submit" value="Go!" />
			</form>
		</div>
	</body>
</html>
`
