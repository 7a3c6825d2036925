package frontend

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Employee Attrition Predictor</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ccc; padding: 0.25rem 0.5rem; font-size: 0.9rem; }
.error { color: #b00020; }
.warning { color: #8a6d00; }
</style>
</head>
<body>
<h1>Employee Attrition Predictor</h1>
<p>Upload employee data as a CSV or Excel file.</p>
<form id="upload">
<input type="file" name="file" accept=".csv,.xlsx" required>
<button type="submit">Predict</button>
</form>
<div id="result"></div>
<script>
const result = document.getElementById("result");

function render(data) {
  result.innerHTML = "";
  for (const w of data.warnings) {
    const p = document.createElement("p");
    p.className = "warning";
    p.textContent = w;
    result.appendChild(p);
  }
  const heading = document.createElement("h2");
  heading.textContent = "Prediction results (" + data.rows + " rows)";
  result.appendChild(heading);

  const table = document.createElement("table");
  const head = table.insertRow();
  for (const c of data.preview.columns) {
    const th = document.createElement("th");
    th.textContent = c;
    head.appendChild(th);
  }
  for (const row of data.preview.rows) {
    const tr = table.insertRow();
    for (const cell of row) {
      tr.insertCell().textContent = cell;
    }
  }
  result.appendChild(table);

  if (data.download_url) {
    const a = document.createElement("a");
    a.href = data.download_url;
    a.textContent = "Download predictions";
    result.appendChild(document.createElement("p")).appendChild(a);
  }
}

document.getElementById("upload").addEventListener("submit", async (e) => {
  e.preventDefault();
  const resp = await fetch("/api/predictions", { method: "POST", body: new FormData(e.target) });
  const data = await resp.json();
  if (!resp.ok) {
    result.innerHTML = "";
    const p = document.createElement("p");
    p.className = "error";
    p.textContent = data.error;
    result.appendChild(p);
    return;
  }
  render(data);
});
</script>
</body>
</html>
`
